package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/travelcal/internal/config"
	"github.com/teemow/travelcal/internal/logging"
)

// rootCmd represents the base command for the travelcal application
var rootCmd = &cobra.Command{
	Use:   "travelcal",
	Short: "Turns travel agency itinerary PDFs into calendar events",
	Long: `travelcal reads the itinerary PDFs sent by the travel agency, extracts the
flights and hotel stays, and turns them into calendar events with commute
blocks before and after every flight.

It can run as:
  - A standalone CLI tool (convert, push)
  - A web application for uploading itineraries (serve)
  - An MCP (Model Context Protocol) server for AI assistants (mcp)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

// version will be set by main
var version = "dev"

var (
	debugMode  bool
	logFormat  string
	configPath string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "travelcal version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file. Can also use TRAVELCAL_CONFIG env var. Default: "+config.DefaultPath())

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCheckSetupCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}

// setupLogging installs the process logger. Logs go to stderr so stdout stays
// free for command output and the MCP stdio transport.
func setupLogging(cmd *cobra.Command) error {
	logger, err := logging.New(os.Stderr, logFormat, debugMode)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the config file named by --config, TRAVELCAL_CONFIG or the
// default path, creating a default file on first run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	stringFromEnv(cmd, "config", "TRAVELCAL_CONFIG", &path)
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		if cfg == nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		slog.Warn("could not write default config, using defaults", logging.File(path), logging.Err(err))
	}

	stringFromEnv(cmd, "", "GOOGLE_CREDENTIALS_FILE", &cfg.Google.CredentialsFile)
	stringFromEnv(cmd, "", "TRAVELCAL_TOKEN_KEY", &cfg.Google.TokenKey)
	return cfg, nil
}
