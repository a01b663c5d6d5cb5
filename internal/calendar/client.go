package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/instrumentation"
)

// DefaultRequestTimeout bounds every Calendar API call.
const DefaultRequestTimeout = 30 * time.Second

// Options tune a Client.
type Options struct {
	// RequestTimeout bounds each API call. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
	Metrics        *instrumentation.Metrics
	Logger         *slog.Logger
}

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string // The account this client is associated with
	timeout time.Duration
	metrics *instrumentation.Metrics
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Calendar client authorized with the token
// stored for account. Refreshed tokens are written back to provider.
func NewClientForAccount(ctx context.Context, conf *oauth2.Config, provider google.TokenProvider, account string, opts Options) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := google.TokenSource(ctx, conf, provider, account, opts.Metrics, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(google.NewHTTPClient(ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return NewClientWithService(svc, account, opts), nil
}

// NewClientWithService wraps an existing service.
func NewClientWithService(svc *calendar.Service, account string, opts Options) *Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		svc:     svc,
		account: account,
		timeout: timeout,
		metrics: opts.Metrics,
	}
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, "insert",
		instrumentation.NewSpanAttributeBuilder().
			WithAccount(c.account).
			WithCalendarEvent(calendarID, input.Kind).
			Build()...,
	)
	defer span.End()

	start := time.Now()
	created, err := c.svc.Events.Insert(calendarID, toAPIEvent(input)).Context(ctx).Do()
	duration := time.Since(start)

	if err != nil {
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, instrumentation.StatusError, duration)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, instrumentation.StatusSuccess, duration)
	instrumentation.SetSpanSuccess(span)

	summary := toEventSummary(created)
	return &summary, nil
}
