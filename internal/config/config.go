// Package config provides configuration helpers for yukti commands.
package config

import (
	"fmt"
	"os"
)

// Defaults for the dashboard and logging.
const (
	DefaultDashboardPort = "8090"
	DefaultLogLevel      = "info"
)

// GoogleAPIKey returns the API key from GOOGLE_API_KEY, falling back
// to GEMINI_API_KEY. Empty if neither is set.
func GoogleAPIKey() string {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}

// GoogleAPIKeyRequired returns the API key or exits with a usage message.
func GoogleAPIKeyRequired() string {
	key := GoogleAPIKey()
	if key == "" {
		fmt.Fprintln(os.Stderr, "Error: GOOGLE_API_KEY environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: GOOGLE_API_KEY=... go run ./cmd/yukti")
		os.Exit(1)
	}
	return key
}

// DashboardPort returns the dashboard port from YUKTI_PORT or the default.
func DashboardPort() string {
	if port := os.Getenv("YUKTI_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// LogLevel returns the log level from YUKTI_LOG_LEVEL or the default.
func LogLevel() string {
	if lvl := os.Getenv("YUKTI_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}
