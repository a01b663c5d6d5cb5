package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dslipak/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/travelcal/internal/itinerary"
	"github.com/teemow/travelcal/internal/pdftext/pdftexttest"
)

func TestExtract_ReturnsPageText(t *testing.T) {
	data := pdftexttest.Build("LATAM AIRLINES LA 2696 CONFIRMADO", "Localizador: QX7P2M")

	text, err := NewExtractor(nil).Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Contains(t, text, "LATAM AIRLINES")
	assert.Contains(t, text, "QX7P2M")
}

func TestExtract_KeepsLineBreaks(t *testing.T) {
	data := pdftexttest.Build(
		"ENTRADA",
		"lu., mar. 23",
		"SALIDA",
		"vi., mar. 27",
		"HOTEL CENTRAL CONFIRMADO",
	)

	text, err := NewExtractor(nil).Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "ENTRADA\nlu., mar. 23\nSALIDA\nvi., mar. 27\nHOTEL CENTRAL CONFIRMADO\n", text)
}

func TestExtract_PagesInOrder(t *testing.T) {
	data := pdftexttest.BuildPages(
		[]string{"ITINERARIO DE VIAJE", "Localizador: QX7P2M"},
		[]string{"ALOJAMIENTO"},
	)

	text, err := NewExtractor(nil).Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "ITINERARIO DE VIAJE\nLocalizador: QX7P2M\nALOJAMIENTO\n", text)
}

func TestExtract_TextParsesIntoBookings(t *testing.T) {
	data := pdftexttest.Build(
		"Viaje a Lima, 2026",
		"Localizador: QX7P2M",
		"Billete electrónico: 0452187654321",
		"SALIDA lu., mar. 23 | 10:00",
		"Santiago de Chile",
		"Aeropuerto Arturo Merino Benitez (SCL)",
		"LLEGADA lu., mar. 23 | 13:00",
		"Lima",
		"Aeropuerto Internacional Jorge Chavez (LIM)",
		"LATAM AIRLINES LA 2696 CONFIRMADO",
		"ENTRADA",
		"lu., mar. 23",
		"SALIDA",
		"vi., mar. 27",
		"HOTEL CENTRAL CONFIRMADO",
		"Dirección: Av. Larco 1234, Miraflores, PE",
	)

	text, err := NewExtractor(nil).Extract(context.Background(), data)
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC) }
	it, diags := itinerary.Parse(text, clock)
	assert.Empty(t, diags)

	require.Len(t, it.Flights, 1)
	f := it.Flights[0]
	assert.Equal(t, "LA2696", f.FlightNumber)
	assert.Equal(t, "SCL", f.Origin)
	assert.Equal(t, "LIM", f.Destination)
	assert.Equal(t, "QX7P2M", f.ReservationCode)
	assert.Equal(t, "0452187654321", f.TicketNumber)
	assert.Equal(t, 2026, f.Departure.Year)

	require.Len(t, it.Hotels, 1)
	h := it.Hotels[0]
	assert.Equal(t, "HOTEL CENTRAL", h.Name)
	assert.Equal(t, 23, h.CheckIn.Day)
	assert.Equal(t, 27, h.CheckOut.Day)
	assert.Equal(t, "America/Lima", h.TimeZone)
}

func TestPageLines(t *testing.T) {
	glyph := func(s string, x, y, w float64) pdf.Text {
		return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: 10}
	}

	tests := []struct {
		name   string
		glyphs []pdf.Text
		want   []string
	}{
		{
			name: "baselines top to bottom",
			glyphs: []pdf.Text{
				glyph("b", 72, 700, 0),
				glyph("a", 72, 714, 0),
			},
			want: []string{"a", "b"},
		},
		{
			name: "sub point jitter stays on one line",
			glyphs: []pdf.Text{
				glyph("L", 72, 700.2, 6),
				glyph("A", 78, 699.9, 6),
			},
			want: []string{"LA"},
		},
		{
			name: "left to right within a line",
			glyphs: []pdf.Text{
				glyph("2", 90, 700, 6),
				glyph("L", 72, 700, 6),
				glyph("A", 78, 700, 6),
			},
			want: []string{"LA 2"},
		},
		{
			name: "no widths keeps stream order",
			glyphs: []pdf.Text{
				glyph("S", 72, 700, 0),
				glyph("C", 72, 700, 0),
				glyph("L", 72, 700, 0),
			},
			want: []string{"SCL"},
		},
		{
			name: "explicit space is not doubled",
			glyphs: []pdf.Text{
				glyph("A", 72, 700, 6),
				glyph(" ", 78, 700, 3),
				glyph("B", 90, 700, 6),
			},
			want: []string{"A B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageLines(tt.glyphs))
		})
	}
}

func TestExtract_BlankDocument(t *testing.T) {
	data := pdftexttest.Build()

	_, err := NewExtractor(nil).Extract(context.Background(), data)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("this is a plain text file, not a document")},
		{name: "truncated", data: pdftexttest.Build("hello")[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(nil).Extract(context.Background(), tt.data)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNoText)
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(nil).Extract(ctx, pdftexttest.Build("hello"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "itinerary.pdf")
	require.NoError(t, os.WriteFile(path, pdftexttest.Build("HOTEL CENTRAL CONFIRMADO"), 0o644))

	text, err := NewExtractor(nil).ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "HOTEL CENTRAL")

	_, err = NewExtractor(nil).ExtractFile(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
