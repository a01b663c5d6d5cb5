package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/pipeline"
	"github.com/teemow/travelcal/internal/report"
	"github.com/teemow/travelcal/internal/tools/common"
)

func newPushCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "push <itinerary.pdf>",
		Short: "Add the events of an itinerary PDF to Google Calendar",
		Long: `Convert an itinerary PDF and create its events in the primary Google Calendar
of an account. Run 'travelcal auth' once per account before pushing.

Events that cannot be created are reported individually; the command exits
non-zero when any event failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			conf, tokens, err := loadOAuth(cfg, "")
			if err != nil {
				return err
			}

			document := args[0]
			res, err := newConverter(cfg, nil, slog.Default()).ConvertPDF(cmd.Context(), pipeline.SourceCLI, document)
			if errors.Is(err, pipeline.ErrNothingFound) {
				fmt.Fprint(cmd.OutOrStdout(), report.Conversion(document, "", res.Itinerary, res.Diagnostics, nil))
				return fmt.Errorf("%s: %w", document, err)
			}
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", document, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Conversion(document, "", res.Itinerary, res.Diagnostics, res.Events))

			open := common.StoredTokenCalendar(conf, tokens, calendarOptions(cfg, nil, slog.Default()))
			pusher, err := open(cmd.Context(), account)
			if err != nil {
				return err
			}

			br, err := pusher.Push(cmd.Context(), res.Events)
			if err != nil {
				return fmt.Errorf("failed to push events: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Push(br))
			if br.Failed > 0 {
				return fmt.Errorf("%d of %d events could not be created", br.Failed, br.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name to use (default: 'default')")
	return cmd
}
