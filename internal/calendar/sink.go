package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/schedule"
)

// PrimaryCalendar is the calendar events are pushed to.
const PrimaryCalendar = "primary"

// SinkName labels events pushed to Google Calendar in metrics.
const SinkName = "google"

// EventCreator creates a single calendar event. *Client implements it.
type EventCreator interface {
	CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error)
}

// Sink pushes events to the primary calendar.
type Sink struct {
	creator    EventCreator
	calendarID string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewSink creates a sink creating events through creator.
func NewSink(creator EventCreator, metrics *instrumentation.Metrics, logger *slog.Logger) *Sink {
	return &Sink{
		creator:    creator,
		calendarID: PrimaryCalendar,
		metrics:    metrics,
		logger:     logging.WithService(logging.OrDefault(logger), instrumentation.ServiceCalendar),
	}
}

// Push creates one calendar event per event, in order. A failed insert is
// recorded with its error class and the push moves on; nothing is retried.
// The only error returned is a context that was already done before the
// first call.
func (s *Sink) Push(ctx context.Context, events []schedule.Event) (*batch.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]batch.Result, 0, len(events))
	for _, e := range events {
		results = append(results, s.push(ctx, e))
	}

	br := batch.Summarize(results)
	s.logger.Info("calendar push finished",
		slog.Int("total", br.Total),
		slog.Int("successful", br.Successful),
		slog.Int("failed", br.Failed),
	)
	return br, nil
}

func (s *Sink) push(ctx context.Context, e schedule.Event) batch.Result {
	created, err := s.creator.CreateEvent(ctx, s.calendarID, EventInputFor(e))
	if err != nil {
		class := Classify(err)
		s.metrics.RecordCalendarPushFailure(ctx, string(class))
		s.logger.Warn("failed to create calendar event",
			slog.String("title", e.Title()),
			slog.String("class", string(class)),
			logging.Err(err),
		)
		return batch.Result{
			ID:     e.UID(),
			Title:  e.Title(),
			Status: batch.StatusError,
			Class:  string(class),
			Error:  err.Error(),
		}
	}

	s.metrics.RecordEventsEmitted(ctx, string(e.Kind()), SinkName, 1)
	return batch.Result{
		ID:     e.UID(),
		Title:  e.Title(),
		Status: batch.StatusSuccess,
		Result: created.HTMLLink,
	}
}

// EventInputFor maps a synthesized event onto the Calendar API input.
func EventInputFor(e schedule.Event) EventInput {
	input := EventInput{
		Summary:       e.Title(),
		Description:   e.Description(),
		Location:      e.Location(),
		Start:         e.Start(),
		End:           e.End(),
		StartTimeZone: e.StartTimeZone(),
		EndTimeZone:   e.EndTimeZone(),
		ColorID:       string(e.Color()),
		Transparency:  TransparencyOpaque,
		Kind:          string(e.Kind()),
	}
	if e.Transparent() {
		input.Transparency = TransparencyTransparent
	}
	if offset, ok := e.Reminder(); ok {
		input.Reminders = []time.Duration{offset}
	}
	return input
}

// Describe renders a one-line push outcome.
func Describe(br *batch.BatchResult) string {
	if br == nil {
		return "nothing pushed"
	}
	return fmt.Sprintf("%d of %d events created, %d failed", br.Successful, br.Total, br.Failed)
}
