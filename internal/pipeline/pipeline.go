// Package pipeline runs a document through text extraction, itinerary
// parsing and schedule synthesis.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/itinerary"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/pdftext"
	"github.com/teemow/travelcal/internal/schedule"
)

// ErrNothingFound is returned when a document yields no valid flight or hotel.
var ErrNothingFound = errors.New("no flights or hotels found")

// Sources label where a conversion was started from.
const (
	SourceCLI = "cli"
	SourceWeb = "web"
	SourceMCP = "mcp"
)

// Result is the outcome of one conversion.
type Result struct {
	Itinerary   itinerary.Itinerary    `json:"itinerary"`
	Diagnostics []itinerary.Diagnostic `json:"diagnostics"`
	Events      []schedule.Event       `json:"events"`
}

// Flights returns the number of valid flights.
func (r *Result) Flights() int { return len(r.Itinerary.Flights) }

// Hotels returns the number of valid hotel stays.
func (r *Result) Hotels() int { return len(r.Itinerary.Hotels) }

// Converter turns itinerary documents into calendar events.
type Converter struct {
	extractor   *pdftext.Extractor
	synthesizer schedule.Synthesizer
	now         func() time.Time
	metrics     *instrumentation.Metrics
	logger      *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithClock sets the clock used when a document carries no year.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// WithMetrics records conversion metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logging.OrDefault(logger) }
}

// NewConverter creates a converter producing events with synth.
func NewConverter(synth schedule.Synthesizer, opts ...Option) *Converter {
	c := &Converter{
		synthesizer: synth,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.extractor = pdftext.NewExtractor(c.logger)
	return c
}

// ConvertPDF extracts the text of the PDF at path and converts it.
func (c *Converter) ConvertPDF(ctx context.Context, source, path string) (*Result, error) {
	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "pipeline.convert",
		instrumentation.NewSpanAttributeBuilder().WithSource(source).Build()...)
	defer span.End()

	logger := logging.WithOperation(c.logger, "pipeline.convert").With(logging.Source(source), logging.File(path))

	text, err := c.extractor.ExtractFile(ctx, path)
	if err != nil {
		c.metrics.RecordConversion(ctx, source, instrumentation.ConversionError, time.Since(start))
		instrumentation.SetSpanError(span, err)
		logger.Error("text extraction failed", logging.Err(err))
		return nil, err
	}

	return c.convert(ctx, span, logger, source, text, start)
}

// ConvertText converts already extracted document text.
func (c *Converter) ConvertText(ctx context.Context, source, text string) (*Result, error) {
	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "pipeline.convert",
		instrumentation.NewSpanAttributeBuilder().WithSource(source).Build()...)
	defer span.End()

	logger := logging.WithOperation(c.logger, "pipeline.convert").With(logging.Source(source))
	return c.convert(ctx, span, logger, source, text, start)
}

func (c *Converter) convert(ctx context.Context, span trace.Span, logger *slog.Logger, source, text string, start time.Time) (*Result, error) {
	it, diags := itinerary.Parse(text, c.now)
	for _, d := range diags {
		logger.Warn("discarded booking", logging.Diagnostic(d.Kind, d.Anchor, d.Field))
		c.metrics.RecordDiagnostic(ctx, d.Kind, d.Field)
	}
	c.metrics.RecordRecords(ctx, itinerary.KindFlight, len(it.Flights))
	c.metrics.RecordRecords(ctx, itinerary.KindHotel, len(it.Hotels))

	res := &Result{Itinerary: it, Diagnostics: diags}
	if it.Empty() {
		c.metrics.RecordConversion(ctx, source, instrumentation.ConversionEmpty, time.Since(start))
		span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithItinerary(0, 0, len(diags), 0).Build()...)
		logger.Warn("no flights or hotels found", slog.Int("diagnostics", len(diags)))
		return res, ErrNothingFound
	}

	res.Events = c.synthesizer.Schedule(it)

	c.metrics.RecordConversion(ctx, source, instrumentation.ConversionSuccess, time.Since(start))
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithItinerary(res.Flights(), res.Hotels(), len(diags), len(res.Events)).Build()...)
	instrumentation.SetSpanSuccess(span)
	logger.Info("conversion finished", logging.Counts(res.Flights(), res.Hotels(), len(res.Events)))
	return res, nil
}
