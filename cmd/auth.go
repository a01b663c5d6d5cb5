package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/report"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Authorize travelcal to create events in Google Calendar for an account.

The command prints a consent URL. Open it, grant access, and paste either the
authorization code or the full URL the browser was redirected to. The token is
stored in the token directory and refreshed automatically afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := google.ValidateAccountName(account); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			conf, tokens, err := loadOAuth(cfg, "")
			if err != nil {
				return err
			}

			state, err := google.GenerateState()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open this URL in your browser and authorize account %q:\n\n  %s\n\n", account, google.AuthCodeURL(conf, state))
			fmt.Fprint(out, "Paste the authorization code or the redirect URL: ")

			input, err := readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code, err := google.ParseAuthCode(input)
			if err != nil {
				return err
			}

			if err := google.Exchange(cmd.Context(), conf, tokens, account, code, nil); err != nil {
				return err
			}

			fmt.Fprintln(out, report.SuccessStyle.Render("✓")+" Authorized account "+account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name to authorize (default: 'default')")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
