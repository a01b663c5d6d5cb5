package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/ics"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/server"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	addr    string
	account string
	metrics MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the itinerary upload web application",
		Long: `Start the web application. Users upload an itinerary PDF and either download
the resulting .ics file or add the events to Google Calendar.

Listen address:
  --addr, the PORT env var or server.addr in the config file. When none is
  set the server tries ports 5000, 8080 and 8888 in turn.

Google Calendar:
  The "Add to Google Calendar" action is only offered when the OAuth client
  credentials file exists (google.credentials_file in the config or the
  GOOGLE_CREDENTIALS_FILE env var). Its redirect URL must point at
  /oauth2callback on this server.

Metrics:
  Prometheus metrics are served on a dedicated port (--metrics-addr) unless
  --metrics-enabled=false or INSTRUMENTATION_ENABLED=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stringFromEnv(cmd, "addr", "PORT", &opts.addr)
			opts.addr = portAddr(opts.addr)
			if err := boolFromEnv(cmd, "metrics-enabled", "METRICS_ENABLED", &opts.metrics.Enabled); err != nil {
				return err
			}
			stringFromEnv(cmd, "metrics-addr", "METRICS_ADDR", &opts.metrics.Addr)

			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (e.g. :5000). Can also use PORT env var.")
	cmd.Flags().StringVar(&opts.account, "account", google.DefaultAccount, "Account name under which tokens from the web OAuth flow are stored")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if opts.addr == "" {
		opts.addr = cfg.Server.Addr
	}

	provider, err := newInstrumentation(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	if opts.metrics.Enabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err := startMetricsServer(opts.metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	connector, err := newConnector(cfg, metrics, logger)
	if err != nil {
		return err
	}

	app, err := server.New(server.Config{
		Converter:      newConverter(cfg, metrics, logger),
		Renderer:       ics.Renderer{},
		Connector:      connector,
		Account:        opts.account,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		SessionTTL:     cfg.Server.SessionTTL,
		Metrics:        metrics,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create web application: %w", err)
	}
	defer app.Close()

	ln, err := server.ListenWithFallback(opts.addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Starting travelcal web application on http://%s\n", ln.Addr())

	return app.Serve(ctx, ln)
}

// newConnector returns the Google connector, or nil when no OAuth client
// credentials are configured.
func newConnector(cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (server.CalendarConnector, error) {
	if !google.CredentialsExist(cfg.Google.CredentialsFile) {
		logger.Warn("Google Calendar push disabled: credentials file not found",
			logging.File(cfg.Google.CredentialsFile))
		return nil, nil
	}

	conf, tokens, err := loadOAuth(cfg, "")
	if err != nil {
		return nil, err
	}
	logger.Info("Google Calendar push enabled", slog.String("redirect_url", conf.RedirectURL))
	return server.NewGoogleConnector(conf, tokens, calendarOptions(cfg, metrics, logger)), nil
}

// startMetricsServer binds the metrics port before returning so a port
// conflict fails the command instead of a background goroutine.
func startMetricsServer(mc MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    mc.Addr,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ln, err := net.Listen("tcp", metricsServer.Addr())
	if err != nil {
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	}
	go func() {
		if err := metricsServer.Serve(ln); err != nil {
			logger.Error("metrics server stopped", logging.Err(err))
		}
	}()
	logger.Info("metrics server started", slog.String("addr", ln.Addr().String()))
	return metricsServer, nil
}
