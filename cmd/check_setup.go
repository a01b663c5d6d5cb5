package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/report"
)

// errSetupIncomplete makes check-setup exit non-zero without repeating the report.
var errSetupIncomplete = errors.New("google calendar integration is not configured")

func newCheckSetupCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "check-setup",
		Short: "Check whether the Google Calendar integration is configured",
		Long: `Report whether the OAuth client credentials file is present and whether a
token has been stored for the account. The command exits non-zero when the
credentials file is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tokens, err := newTokenProvider(cfg)
			if err != nil {
				return err
			}
			if !checkSetup(cmd.OutOrStdout(), cfg, account, tokens.HasTokenForAccount(account)) {
				cmd.SilenceErrors = true
				return errSetupIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account whose token to check")
	return cmd
}

// checkSetup prints the setup report and reports whether pushing to Google
// Calendar can work.
func checkSetup(w io.Writer, cfg *config.Config, account string, hasToken bool) bool {
	fmt.Fprintln(w, report.TitleStyle.Render("Google Calendar Integration Setup Check"))
	fmt.Fprintln(w)

	credentials := google.CredentialsExist(cfg.Google.CredentialsFile)
	fmt.Fprintf(w, "  %s: %s\n", cfg.Google.CredentialsFile, status(credentials, "Found", "Missing"))
	fmt.Fprintf(w, "  token for %q: %s\n", account, status(hasToken, "Found", "Not authorized"))
	fmt.Fprintln(w)

	if !credentials {
		fmt.Fprintln(w, report.WarningStyle.Render("Google Calendar integration is NOT configured"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "To enable the Google Calendar push:")
		fmt.Fprintln(w, "  1. Create an OAuth client (Desktop or Web) in the Google Cloud Console")
		fmt.Fprintln(w, "  2. Download its credentials.json")
		fmt.Fprintf(w, "  3. Save it as %s or set GOOGLE_CREDENTIALS_FILE\n", cfg.Google.CredentialsFile)
		fmt.Fprintln(w)
		fmt.Fprintln(w, report.DimStyle.Render("In the meantime, 'travelcal convert' writes .ics files that work with any calendar app."))
		return false
	}

	fmt.Fprintln(w, report.SuccessStyle.Render("Google Calendar integration is configured!"))
	if !hasToken {
		fmt.Fprintf(w, "Run 'travelcal auth --account %s' once before using 'travelcal push'.\n", account)
	}
	return true
}

func status(ok bool, yes, no string) string {
	if ok {
		return report.SuccessStyle.Render("✓ " + yes)
	}
	return report.ErrorStyle.Render("✗ " + no)
}
