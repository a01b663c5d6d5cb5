package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/google"
	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
	"github.com/teemow/travelcal/internal/resources"
	"github.com/teemow/travelcal/internal/tools/common"
	"github.com/teemow/travelcal/internal/tools/itinerary_tools"
)

func newMCPCmd() *cobra.Command {
	var allowWrite bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol (MCP) server on standard input/output so AI
assistants can parse itineraries and export calendars.

Safety Mode:
  By default only tools that read PDFs or write local .ics files are offered.
  Use --allow-write to also register itinerary_push_calendar, which creates
  events in Google Calendar with the tokens stored by 'travelcal auth'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd, allowWrite)
		},
	}

	cmd.Flags().BoolVar(&allowWrite, "allow-write", false, "Enable the Google Calendar push tool. Default is to only read PDFs and write local files.")
	return cmd
}

func runMCP(cmd *cobra.Command, allowWrite bool) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	provider, err := newInstrumentation(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	opener, err := newCalendarOpener(cfg, allowWrite, provider.Metrics(), logger)
	if err != nil {
		return err
	}
	tc := common.NewToolContext(newConverter(cfg, provider.Metrics(), logger), opener, provider.Metrics(), logger)

	mcpSrv, err := newMCPServer(tc, cfg, allowWrite)
	if err != nil {
		return err
	}
	if allowWrite {
		logger.Info("MCP server started with Google Calendar writes enabled (--allow-write)")
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- mcpserver.ServeStdio(mcpSrv)
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

func newMCPServer(tc *common.ToolContext, cfg *config.Config, allowWrite bool) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("travelcal", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	if err := itinerary_tools.RegisterItineraryTools(mcpSrv, tc, allowWrite); err != nil {
		return nil, fmt.Errorf("failed to register itinerary tools: %w", err)
	}
	if err := resources.RegisterSettingsResources(mcpSrv, cfg); err != nil {
		return nil, fmt.Errorf("failed to register settings resources: %w", err)
	}
	return mcpSrv, nil
}

// newCalendarOpener returns nil unless writes are allowed and OAuth client
// credentials are present.
func newCalendarOpener(cfg *config.Config, allowWrite bool, metrics *instrumentation.Metrics, logger *slog.Logger) (common.CalendarOpener, error) {
	if !allowWrite {
		return nil, nil
	}
	if !google.CredentialsExist(cfg.Google.CredentialsFile) {
		logger.Warn("Google Calendar push unavailable: credentials file not found",
			logging.File(cfg.Google.CredentialsFile))
		return nil, nil
	}

	conf, tokens, err := loadOAuth(cfg, "")
	if err != nil {
		return nil, err
	}
	return common.StoredTokenCalendar(conf, tokens, calendarOptions(cfg, metrics, logger)), nil
}
