package server

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/teemow/travelcal/internal/batch"
	"github.com/teemow/travelcal/internal/calendar"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/schedule"
)

// EventPusher creates events in a remote calendar.
type EventPusher interface {
	Push(ctx context.Context, events []schedule.Event) (*batch.BatchResult, error)
}

// CalendarConnector starts and completes the consent flow for a remote
// calendar.
type CalendarConnector interface {
	// AuthCodeURL returns the consent page for state.
	AuthCodeURL(state string) string
	// Connect redeems code for account and returns a pusher for it.
	Connect(ctx context.Context, account, code string) (EventPusher, error)
}

// GoogleConnector connects to Google Calendar through the web OAuth flow and
// keeps the resulting token in Tokens.
type GoogleConnector struct {
	OAuth   *oauth2.Config
	Tokens  google.TokenProvider
	Options calendar.Options
}

// NewGoogleConnector creates a connector. conf must carry the redirect URL of
// the /oauth2callback route.
func NewGoogleConnector(conf *oauth2.Config, tokens google.TokenProvider, opts calendar.Options) *GoogleConnector {
	return &GoogleConnector{OAuth: conf, Tokens: tokens, Options: opts}
}

// AuthCodeURL returns the Google consent page URL for state.
func (c *GoogleConnector) AuthCodeURL(state string) string {
	return google.AuthCodeURL(c.OAuth, state)
}

// Connect exchanges code, stores the token and returns a calendar sink.
func (c *GoogleConnector) Connect(ctx context.Context, account, code string) (EventPusher, error) {
	if err := google.Exchange(ctx, c.OAuth, c.Tokens, account, code, c.Options.Metrics); err != nil {
		return nil, err
	}

	client, err := calendar.NewClientForAccount(ctx, c.OAuth, c.Tokens, account, c.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return calendar.NewSink(client, c.Options.Metrics, c.Options.Logger), nil
}

var _ CalendarConnector = (*GoogleConnector)(nil)
