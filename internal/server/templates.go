package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/schedule"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash message categories.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

const eventTimeLayout = "Mon 02 Jan 15:04 MST"

type flash struct {
	Category string
	Message  string
}

type downloadLink struct {
	URL  string
	Name string
}

type eventRow struct {
	Color string
	Start string
	Title string
}

type pageData struct {
	Title         string
	Flashes       []flash
	Download      *downloadLink
	Events        []eventRow
	GoogleEnabled bool
	MaxUploadMB   int64
	Push          *batch.BatchResult
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func eventRows(events []schedule.Event) []eventRow {
	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventRow{
			Color: e.Color().RGB(),
			Start: e.Start().Format(eventTimeLayout),
			Title: e.Title(),
		})
	}
	return rows
}

// render executes the named page into a buffer first so a template error never
// leaves a half written response.
func (a *App) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.GoogleEnabled = a.connector != nil
	data.MaxUploadMB = a.maxUploadBytes >> 20

	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
