package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Language    string
	ShowQueries bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMQUERY_CONFIG", "configs/example.json"),
		"Path to configuration file (env: SEMQUERY_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("SEMQUERY_CONFIG", "configs/example.json"),
		"Path to configuration file (env: SEMQUERY_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMQUERY_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: SEMQUERY_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMQUERY_LOG_FORMAT", ""),
		"Log format: json, text (env: SEMQUERY_LOG_FORMAT)")

	flag.StringVar(&cfg.Language, "lang",
		getEnv("SEMQUERY_LANG", ""),
		"Answer language: no, en (env: SEMQUERY_LANG)")

	flag.BoolVar(&cfg.ShowQueries, "show-queries", false,
		"Print the generated GraphQL and graph query for each answer")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate config file exists
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	switch cfg.Language {
	case "", "no", "en":
	default:
		return fmt.Errorf("invalid language: %s", cfg.Language)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Natural-language queries over a building-energy knowledge graph

Usage: %s [options] ["question ..."]

Reads a question from the arguments, or from stdin line by line when no
question is given.

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Ask one question
  %s --config=/etc/semquery/config.json "Vis alle temperatursensorer"

  # Interactive, English answers, with generated queries shown
  %s --lang=en --show-queries

  # Validate configuration only
  %s --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// flagArgs returns the positional arguments after flag parsing.
func flagArgs() []string {
	return flag.Args()
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
