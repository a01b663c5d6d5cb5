// Package pdftext turns an itinerary PDF into the plain text the itinerary
// parser scans.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
)

// ErrNoText is returned when a document parses but carries no extractable text,
// which is what scanned itineraries look like.
var ErrNoText = errors.New("document contains no extractable text")

// Extractor pulls text out of PDF documents.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger uses slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.OrDefault(logger)}
}

// ExtractFile reads the document at path and returns its text.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	e.logger.Debug("extracting text", logging.File(path), slog.Int("bytes", len(data)))
	return e.Extract(ctx, data)
}

// Extract returns the text of the PDF held in data, pages in document order.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "pdftext.extract",
		attribute.Int(instrumentation.SpanAttrDocumentBytes, len(data)),
	)
	defer span.End()

	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("failed to open document: empty input")
	}

	text, pages, err := extract(data)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrPages, pages))

	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	instrumentation.SetSpanSuccess(span)
	return text, nil
}

// extract runs the pdf reader. The reader panics on some malformed inputs,
// those come back as errors.
func extract(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("failed to parse document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open document: %w", err)
	}
	pages = r.NumPage()

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range pageLines(page.Content().Text) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), pages, nil
}

// wordGap is the horizontal gap, as a fraction of the font size, above which
// two glyphs on a line are taken to be separate words.
const wordGap = 0.2

// pageLines rebuilds the lines of a page from its positioned glyphs, top to
// bottom. The itinerary patterns are line oriented, so glyphs sharing a
// baseline must end up on one line and every baseline change must start a
// new one.
func pageLines(glyphs []pdf.Text) []string {
	type line struct {
		y      float64
		glyphs []pdf.Text
	}

	var lines []*line
	byY := make(map[float64]*line)
	for _, g := range glyphs {
		y := math.Round(g.Y)
		l, ok := byY[y]
		if !ok {
			l = &line{y: y}
			byY[y] = l
			lines = append(lines, l)
		}
		l.glyphs = append(l.glyphs, g)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })

		var b strings.Builder
		for i, g := range l.glyphs {
			if i > 0 && needsSpace(l.glyphs[i-1], g) {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
		}
		out = append(out, b.String())
	}
	return out
}

// needsSpace reports whether a word break sits between prev and next without
// a space glyph. Fonts without width tables report zero widths, for those
// only the glyphs themselves count.
func needsSpace(prev, next pdf.Text) bool {
	if prev.W <= 0 || prev.S == " " || next.S == " " {
		return false
	}
	return next.X-(prev.X+prev.W) > wordGap*prev.FontSize
}
