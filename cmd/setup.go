package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/teemow/travelcal/internal/calendar"
	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/pipeline"
)

// newInstrumentation creates the telemetry provider for long running
// commands. INSTRUMENTATION_ENABLED=false turns it off.
func newInstrumentation(ctx context.Context) (*instrumentation.Provider, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

func newConverter(cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) *pipeline.Converter {
	return pipeline.NewConverter(cfg.Synthesizer(),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
	)
}

// newTokenProvider opens the token directory, encrypted when a token key is
// configured.
func newTokenProvider(cfg *config.Config) (*google.FileTokenProvider, error) {
	key, err := google.EncryptionKeyFromBase64(cfg.Google.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("invalid token key: %w", err)
	}
	store, err := google.NewFileTokenStore(cfg.Google.TokenDir, key)
	if err != nil {
		return nil, err
	}
	return google.NewFileTokenProvider(store), nil
}

// loadOAuth loads the OAuth client and token provider. redirectURL overrides
// the one in the config when non-empty.
func loadOAuth(cfg *config.Config, redirectURL string) (*oauth2.Config, *google.FileTokenProvider, error) {
	if redirectURL == "" {
		redirectURL = cfg.Google.RedirectURL
	}
	conf, err := google.LoadOAuthConfig(cfg.Google.CredentialsFile, redirectURL)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := newTokenProvider(cfg)
	if err != nil {
		return nil, nil, err
	}
	return conf, tokens, nil
}

func calendarOptions(cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) calendar.Options {
	return calendar.Options{
		RequestTimeout: cfg.Google.RequestTimeout,
		Metrics:        metrics,
		Logger:         logger,
	}
}
