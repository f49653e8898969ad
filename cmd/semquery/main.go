// Package main implements the entry point for the SemQuery CLI.
// SemQuery answers natural-language questions about a building-energy
// knowledge graph by compiling them into graph queries and formatting
// the results back into natural language.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/c360/semquery/config"
	"github.com/c360/semquery/graph"
	"github.com/c360/semquery/intent"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/ontology"
	"github.com/c360/semquery/pipeline"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semquery"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, cliCfg)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, closeClient, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	if question := strings.TrimSpace(strings.Join(flagArgs(), " ")); question != "" {
		return answer(ctx, p, question, cfg.Language(), cliCfg.ShowQueries)
	}
	return interactive(ctx, p, cfg.Language(), cliCfg.ShowQueries)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Debug("Starting SemQuery",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// applyFlagOverrides lets command-line flags win over file values.
func applyFlagOverrides(cfg *config.Config, cliCfg *CLIConfig) {
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if cliCfg.Language != "" {
		cfg.Pipeline.Language = cliCfg.Language
	}
}

// buildPipeline wires the ontology, intent extraction, graph transport and
// metrics into a ready pipeline. The returned func closes the NATS client.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	reg, err := ontology.BuildingOntology()
	if err != nil {
		return nil, nil, fmt.Errorf("build ontology: %w", err)
	}

	var primary intent.Strategy
	if cfg.LLM.Enabled {
		primary, err = intent.NewModelStrategy(reg, intent.ModelConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout.Std(),
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create model strategy: %w", err)
		}
		slog.Info("Model-assisted intent extraction enabled", "model", cfg.LLM.Model)
	}
	extractor := intent.NewExtractor(reg, primary, logger)

	client, err := graph.Connect(graph.Config{
		URL:            cfg.NATS.URL,
		Subject:        cfg.NATS.Subject,
		Timeout:        cfg.NATS.Timeout.Std(),
		MaxInFlight:    cfg.NATS.MaxInFlight,
		AcquireTimeout: cfg.NATS.AcquireTimeout.Std(),
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect graph client: %w", err)
	}

	metrics := metric.NewRegistry()
	p := pipeline.New(reg, extractor, client, pipeline.Options{
		DefaultLimit:    cfg.Pipeline.DefaultLimit,
		DefaultLanguage: cfg.Language(),
		Logger:          logger,
		Metrics:         metrics.Metrics,
	})

	return p, client.Close, nil
}

// answer runs one question through the pipeline and prints the result. A
// rejected request prints the clarifying message and exits non-zero.
func answer(ctx context.Context, p *pipeline.Pipeline, question string, lang ontology.Language, showQueries bool) error {
	ans, err := p.Ask(ctx, question, lang)
	if showQueries && ans != nil {
		printQueries(ans)
	}
	if ans != nil && ans.Text != "" {
		fmt.Println(ans.Text)
	}
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}
	return nil
}

// interactive reads questions from stdin line by line until EOF or signal.
func interactive(ctx context.Context, p *pipeline.Pipeline, lang ontology.Language, showQueries bool) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			fmt.Print("> ")
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		ans, err := p.Ask(ctx, question, lang)
		if showQueries && ans != nil {
			printQueries(ans)
		}
		if ans != nil && ans.Text != "" {
			fmt.Println(ans.Text)
		}
		if err != nil {
			slog.Debug("request rejected", "error", err)
		}
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	fmt.Println()
	return nil
}

func printQueries(ans *pipeline.Answer) {
	if ans.GraphQL != "" {
		fmt.Printf("--- GraphQL ---\n%s\n", ans.GraphQL)
	}
	if ans.Cypher != "" {
		fmt.Printf("--- Graph query ---\n%s\n", ans.Cypher)
	}
	if ans.GraphQL != "" || ans.Cypher != "" {
		fmt.Println("--- Answer ---")
	}
}
