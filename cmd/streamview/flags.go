package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Locator     string
	ClientID    string
	DeviceID    string
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("STREAMVIEW_CONFIG", "streamview"),
		"Configuration file name, without extension (env: STREAMVIEW_CONFIG)")

	flag.StringVar(&cfg.Locator, "locator",
		getEnv("STREAMVIEW_LOCATOR", ""),
		"Resource locator to load, e.g. urn:vertexvis:stream-key:<key> (env: STREAMVIEW_LOCATOR)")

	flag.StringVar(&cfg.ClientID, "client-id",
		getEnv("STREAMVIEW_CLIENT_ID", ""),
		"Client identifier for session caching (env: STREAMVIEW_CLIENT_ID)")

	flag.StringVar(&cfg.DeviceID, "device-id",
		getEnv("STREAMVIEW_DEVICE_ID", ""),
		"Device identifier sent in the handshake (env: STREAMVIEW_DEVICE_ID)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("STREAMVIEW_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: STREAMVIEW_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("STREAMVIEW_LOG_FORMAT", "text"),
		"Log format: json, text (env: STREAMVIEW_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Locator == "" {
		return fmt.Errorf("a locator is required, pass --locator or set STREAMVIEW_LOCATOR")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Rendering stream session viewer

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Stream a scene by stream key
  %s --locator=urn:vertexvis:stream-key:abc123

  # Resume a cached session across restarts
  %s --locator=urn:vertexvis:stream-key:abc123 --client-id=viewer-1

  # Run with debug logging against a local endpoint
  export STREAMVIEW_LOG_LEVEL=debug
  %s --locator=urn:vertexvis:stream-key:abc123

Version: %s
`, os.Args[0], os.Args[0], os.Args[0], Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
