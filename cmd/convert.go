package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/ics"
	"github.com/teemow/travelcal/internal/pipeline"
	"github.com/teemow/travelcal/internal/report"
)

func newConvertCmd() *cobra.Command {
	var (
		output      string
		flightColor string
		hotelColor  string
	)

	cmd := &cobra.Command{
		Use:   "convert <itinerary.pdf>",
		Short: "Convert an itinerary PDF into an .ics calendar file",
		Long: `Extract the flights and hotel stays from an itinerary PDF and write them,
together with the commute blocks around every flight, to an iCalendar file.

The calendar is written next to the PDF with an .ics extension unless
--output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("flight-color") {
				cfg.FlightColor = flightColor
			}
			if cmd.Flags().Changed("hotel-color") {
				cfg.HotelColor = hotelColor
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			document := args[0]
			if output == "" {
				output = ics.OutputPath(document)
			}

			res, err := newConverter(cfg, nil, slog.Default()).ConvertPDF(cmd.Context(), pipeline.SourceCLI, document)
			if errors.Is(err, pipeline.ErrNothingFound) {
				fmt.Fprint(cmd.OutOrStdout(), report.Conversion(document, "", res.Itinerary, res.Diagnostics, nil))
				return fmt.Errorf("%s: %w", document, err)
			}
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", document, err)
			}

			if err := ics.NewFileSink(output, nil, slog.Default()).Write(cmd.Context(), res.Events); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Conversion(document, output, res.Itinerary, res.Diagnostics, res.Events))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .ics file (default: the PDF path with an .ics extension)")
	cmd.Flags().StringVar(&flightColor, "flight-color", "", "Calendar color ID (1-11) for flight events. Overrides the config file.")
	cmd.Flags().StringVar(&hotelColor, "hotel-color", "", "Calendar color ID (1-11) for hotel events. Overrides the config file.")

	return cmd
}
