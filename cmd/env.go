package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// stringFromEnv replaces *dst with the value of env unless the flag was given
// on the command line. An empty flag name means there is no flag to honour.
func stringFromEnv(cmd *cobra.Command, flag, env string, dst *string) {
	if flag != "" && cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// boolFromEnv is stringFromEnv for boolean flags.
func boolFromEnv(cmd *cobra.Command, flag, env string, dst *bool) error {
	if flag != "" && cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q (expected true/false): %w", env, v, err)
	}
	*dst = parsed
	return nil
}

// portAddr turns a bare port such as the PORT variable into a listen address.
func portAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
