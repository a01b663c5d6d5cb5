package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/travelcal/internal/calendar"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/ics"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/server"
)

// CalendarOpener returns a pusher for the calendar of account.
type CalendarOpener func(ctx context.Context, account string) (server.EventPusher, error)

// ToolContext carries the dependencies shared by the MCP tools.
type ToolContext struct {
	Converter server.DocumentConverter
	Renderer  ics.Renderer
	// Calendar opens remote calendars. Nil disables calendar pushes.
	Calendar CalendarOpener
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// NewToolContext creates a tool context. metrics and logger may be nil.
func NewToolContext(converter server.DocumentConverter, opener CalendarOpener, metrics *instrumentation.Metrics, logger *slog.Logger) *ToolContext {
	return &ToolContext{
		Converter: converter,
		Calendar:  opener,
		metrics:   metrics,
		logger:    logging.WithService(logging.OrDefault(logger), "mcp"),
	}
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (tc *ToolContext) Metrics() *instrumentation.Metrics {
	if tc == nil {
		return nil
	}
	return tc.metrics
}

// Logger returns the tool logger.
func (tc *ToolContext) Logger() *slog.Logger {
	if tc == nil || tc.logger == nil {
		return slog.Default()
	}
	return tc.logger
}

// StoredTokenCalendar opens Google calendars with the tokens saved by
// `travelcal auth`. It never starts an interactive flow.
func StoredTokenCalendar(conf *oauth2.Config, tokens google.TokenProvider, opts calendar.Options) CalendarOpener {
	return func(ctx context.Context, account string) (server.EventPusher, error) {
		if err := google.ValidateAccountName(account); err != nil {
			return nil, err
		}
		if !tokens.HasTokenForAccount(account) {
			return nil, fmt.Errorf(`Google OAuth token not found for account "%s". To authorize access:

1. Run: travelcal auth --account %s
2. Open the printed URL and sign in with your Google account
3. Grant access to Google Calendar events
4. Paste the authorization code back into the terminal

Note: You only need to authorize once. The tokens will be automatically refreshed.`, account, account)
		}

		client, err := calendar.NewClientForAccount(ctx, conf, tokens, account, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
		}
		return calendar.NewSink(client, opts.Metrics, opts.Logger), nil
	}
}

// ErrCalendarDisabled is returned when no calendar opener is configured.
var ErrCalendarDisabled = errors.New("google calendar is not configured")

// OpenCalendar opens the calendar of account through the configured opener.
func (tc *ToolContext) OpenCalendar(ctx context.Context, account string) (server.EventPusher, error) {
	if tc.Calendar == nil {
		return nil, ErrCalendarDisabled
	}
	return tc.Calendar(ctx, account)
}
