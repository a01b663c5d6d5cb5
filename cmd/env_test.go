package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func newFlagCmd(t *testing.T, args ...string) (*cobra.Command, *string, *bool) {
	t.Helper()
	var (
		addr    string
		enabled bool
	)
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().StringVar(&addr, "addr", ":5000", "")
	cmd.Flags().BoolVar(&enabled, "metrics-enabled", true, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return cmd, &addr, &enabled
}

func TestStringFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      string
		expected string
	}{
		{
			name:     "env overrides default",
			env:      "8080",
			expected: "8080",
		},
		{
			name:     "explicit flag wins over env",
			args:     []string{"--addr", ":9000"},
			env:      "8080",
			expected: ":9000",
		},
		{
			name:     "empty env keeps default",
			expected: ":5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.env)
			cmd, addr, _ := newFlagCmd(t, tt.args...)

			stringFromEnv(cmd, "addr", "PORT", addr)
			if *addr != tt.expected {
				t.Errorf("stringFromEnv() = %q, want %q", *addr, tt.expected)
			}
		})
	}
}

func TestStringFromEnv_NoFlag(t *testing.T) {
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/travelcal/credentials.json")
	cmd, _, _ := newFlagCmd(t)

	value := "credentials.json"
	stringFromEnv(cmd, "", "GOOGLE_CREDENTIALS_FILE", &value)
	if value != "/etc/travelcal/credentials.json" {
		t.Errorf("stringFromEnv() = %q", value)
	}
}

func TestBoolFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         string
		expected    bool
		expectError bool
	}{
		{name: "unset keeps default", expected: true},
		{name: "env disables", env: "false", expected: false},
		{name: "explicit flag wins", args: []string{"--metrics-enabled=true"}, env: "false", expected: true},
		{name: "invalid value", env: "maybe", expected: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_ENABLED", tt.env)
			cmd, _, enabled := newFlagCmd(t, tt.args...)

			err := boolFromEnv(cmd, "metrics-enabled", "METRICS_ENABLED", enabled)
			if (err != nil) != tt.expectError {
				t.Fatalf("boolFromEnv() error = %v, expectError %v", err, tt.expectError)
			}
			if *enabled != tt.expected {
				t.Errorf("boolFromEnv() = %v, want %v", *enabled, tt.expected)
			}
		})
	}
}

func TestPortAddr(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "8080", expected: ":8080"},
		{input: " 5000 ", expected: ":5000"},
		{input: ":8888", expected: ":8888"},
		{input: "127.0.0.1:5000", expected: "127.0.0.1:5000"},
	}

	for _, tt := range tests {
		if got := portAddr(tt.input); got != tt.expected {
			t.Errorf("portAddr(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
