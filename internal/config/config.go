// Package config loads and saves the travelcal YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teemow/travelcal/internal/schedule"
)

// ErrInvalidColor is returned for a color ID outside the calendar palette.
var ErrInvalidColor = errors.New("invalid calendar color ID")

// Defaults applied by Normalize.
const (
	DefaultCredentialsFile = "credentials.json"
	DefaultRedirectURL     = "http://localhost:5000/oauth2callback"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxUploadMB     = 16
	DefaultSessionTTL      = time.Hour
)

// CommuteHours is a before/after pair of commute durations in hours.
type CommuteHours struct {
	Before float64 `yaml:"before,omitempty" json:"before,omitempty"`
	After  float64 `yaml:"after,omitempty" json:"after,omitempty"`
}

// CommuteConfig overrides the built-in commute durations.
type CommuteConfig struct {
	// Overrides maps "<IATA>_before" or "<IATA>_after" to hours.
	Overrides map[string]float64 `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	// International applies to every airport outside the domestic set.
	International CommuteHours `yaml:"international,omitempty" json:"international,omitempty"`
}

// GoogleConfig configures the Google Calendar sink.
type GoogleConfig struct {
	CredentialsFile string        `yaml:"credentials_file" json:"credentials_file"`
	TokenDir        string        `yaml:"token_dir,omitempty" json:"token_dir,omitempty"`
	RedirectURL     string        `yaml:"redirect_url" json:"redirect_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	// TokenKey is a base64 AES-256 key encrypting stored tokens.
	TokenKey string `yaml:"token_key,omitempty" json:"-"`
}

// ServerConfig configures the web application.
type ServerConfig struct {
	// Addr is the listen address. Empty tries the fallback ports.
	Addr        string        `yaml:"addr,omitempty" json:"addr,omitempty"`
	MaxUploadMB int           `yaml:"max_upload_mb" json:"max_upload_mb"`
	SessionTTL  time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

// Config is the top-level application configuration.
type Config struct {
	FlightColor string        `yaml:"flight_color" json:"flight_color"`
	HotelColor  string        `yaml:"hotel_color" json:"hotel_color"`
	Commute     CommuteConfig `yaml:"commute,omitempty" json:"commute,omitempty"`
	Google      GoogleConfig  `yaml:"google" json:"google"`
	Server      ServerConfig  `yaml:"server" json:"server"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	if c.FlightColor == "" {
		c.FlightColor = string(schedule.DefaultFlightColor)
	}
	if c.HotelColor == "" {
		c.HotelColor = string(schedule.DefaultHotelColor)
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = DefaultCredentialsFile
	}
	if c.Google.RedirectURL == "" {
		c.Google.RedirectURL = DefaultRedirectURL
	}
	if c.Google.RequestTimeout <= 0 {
		c.Google.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, ok := schedule.ParseColorID(c.FlightColor); !ok {
		return fmt.Errorf("%w: flight_color %q", ErrInvalidColor, c.FlightColor)
	}
	if _, ok := schedule.ParseColorID(c.HotelColor); !ok {
		return fmt.Errorf("%w: hotel_color %q", ErrInvalidColor, c.HotelColor)
	}
	for key, hours := range c.Commute.Overrides {
		if _, _, ok := parseOverrideKey(key); !ok {
			return fmt.Errorf("invalid commute override %q: want <IATA>_before or <IATA>_after", key)
		}
		if hours < 0 {
			return fmt.Errorf("invalid commute override %q: negative duration", key)
		}
	}
	if c.Commute.International.Before < 0 || c.Commute.International.After < 0 {
		return errors.New("invalid international commute: negative duration")
	}
	return nil
}

// Synthesizer builds a schedule synthesizer from the color and commute
// settings. Call Validate first; invalid colors fall back to the defaults.
func (c *Config) Synthesizer() schedule.Synthesizer {
	flight, _ := schedule.ParseColorID(c.FlightColor)
	hotel, _ := schedule.ParseColorID(c.HotelColor)
	return schedule.Synthesizer{
		Commutes:    c.CommuteTable(),
		FlightColor: flight,
		HotelColor:  hotel,
	}
}

// CommuteTable converts the hour-based overrides into durations.
func (c *Config) CommuteTable() schedule.CommuteTable {
	table := schedule.CommuteTable{
		International: schedule.CommutePair{
			Before: hours(c.Commute.International.Before),
			After:  hours(c.Commute.International.After),
		},
	}
	if len(c.Commute.Overrides) > 0 {
		table.Overrides = make(map[string]time.Duration, len(c.Commute.Overrides))
		for key, h := range c.Commute.Overrides {
			airport, dir, ok := parseOverrideKey(key)
			if !ok {
				continue
			}
			table.Overrides[schedule.OverrideKey(airport, dir)] = hours(h)
		}
	}
	return table
}

func parseOverrideKey(key string) (string, schedule.Direction, bool) {
	airport, dir, ok := strings.Cut(key, "_")
	if !ok || len(airport) != 3 {
		return "", "", false
	}
	switch d := schedule.Direction(strings.ToLower(dir)); d {
	case schedule.Before, schedule.After:
		return airport, d, true
	default:
		return "", "", false
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// DefaultPath returns $XDG_CONFIG_HOME/travelcal/config.yaml, or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "travelcal", "config.yaml")
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".travelcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
