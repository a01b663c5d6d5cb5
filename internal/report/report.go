// Package report renders human readable conversion and push summaries for
// the command line.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/itinerary"
	"github.com/teemow/travelcal/internal/schedule"
)

const timeLayout = "Mon 02 Jan 15:04 MST"

// Conversion summarizes what a document produced. output may be empty when
// nothing was written.
func Conversion(document, output string, it itinerary.Itinerary, diags []itinerary.Diagnostic, events []schedule.Event) string {
	var b strings.Builder

	title := filepath.Base(document)
	if output != "" {
		title += " → " + filepath.Base(output)
	}
	b.WriteString(TitleStyle.Render("TRAVELCAL") + " " + title + "\n")
	b.WriteString(Found(len(it.Flights), len(it.Hotels)) + "\n")

	if len(events) > 0 {
		b.WriteString("\n")
		for _, e := range events {
			b.WriteString(eventLine(e) + "\n")
		}
	}

	if len(diags) > 0 {
		b.WriteString("\n" + WarningStyle.Render(fmt.Sprintf("Discarded %d booking(s):", len(diags))) + "\n")
		for _, d := range diags {
			b.WriteString("  " + WarningStyle.Render("!") + " " + d.String() + "\n")
		}
	}
	return b.String()
}

// Found is the one-line record count shown after a conversion.
func Found(flights, hotels int) string {
	return fmt.Sprintf("Found %d flights and %d hotels.", flights, hotels)
}

func eventLine(e schedule.Event) string {
	when := e.Start().Format(timeLayout)
	line := fmt.Sprintf("  %s %s  %s", swatch(e.Color().RGB()), DimStyle.Render(when), e.Title())
	if e.Kind().IsCommute() {
		line += DimStyle.Render(" (" + e.Duration().String() + ")")
	}
	return line
}

// Push summarizes a calendar push.
func Push(br *batch.BatchResult) string {
	if br == nil {
		return DimStyle.Render("Nothing pushed.") + "\n"
	}

	var b strings.Builder
	headline := fmt.Sprintf("%d of %d events created", br.Successful, br.Total)
	if br.Failed == 0 {
		b.WriteString(SuccessStyle.Render("✓") + " " + headline + "\n")
		return b.String()
	}

	b.WriteString(ErrorStyle.Render("✗") + " " + headline + fmt.Sprintf(", %d failed", br.Failed) + "\n")
	for _, r := range br.Results {
		if r.Succeeded() {
			continue
		}
		label := r.Title
		if label == "" {
			label = r.ID
		}
		b.WriteString(fmt.Sprintf("  %s %s [%s]: %s\n", ErrorStyle.Render("!"), label, r.Class, r.Error))
	}
	return b.String()
}
