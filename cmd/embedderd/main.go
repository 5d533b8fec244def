// Package main is the entry point for the substratix embedding daemon.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/substratix/substratix/internal/config"
	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/embedding"
	"github.com/substratix/substratix/internal/loader"
	"github.com/substratix/substratix/internal/observability"
	"github.com/substratix/substratix/internal/policy"
	"github.com/substratix/substratix/internal/repository/memory"
	"github.com/substratix/substratix/internal/server"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	vnrsPath := flag.String("vnrs", "", "Batch mode: embed the VNRs in this file and exit")
	outPath := flag.String("out", "", "Batch mode: write results to this file instead of stdout")
	flag.Parse()

	if *showVersion {
		println("Substratix Embedding Daemon")
		println("Version:", version)
		println("Commit:", commit)
		println("Build Date:", buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		println("Failed to load config:", err.Error())
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("Starting substratix embedding daemon",
		zap.String("version", version),
		zap.String("commit", commit),
	)

	network, err := loader.LoadSubstrate(cfg.Substrate.Path)
	if err != nil {
		logger.Fatal("Failed to load substrate", zap.String("path", cfg.Substrate.Path), zap.Error(err))
	}
	graph, err := loader.BuildGraph(network)
	if err != nil {
		logger.Fatal("Malformed substrate topology", zap.Error(err))
	}
	logger.Info("Substrate loaded",
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("links", len(graph.Links())),
	)

	pol, err := policy.FromBackend(cfg.Policy.Backend, cfg.Policy.Softmax)
	if err != nil {
		logger.Fatal("Invalid policy configuration", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(cfg.Embedding.Seed))

	if *vnrsPath != "" {
		engine := embedding.New(graph, pol, rng, nil, nil, logger)
		if err := runBatch(engine, *vnrsPath, *outPath, logger); err != nil {
			logger.Fatal("Batch embedding failed", zap.Error(err))
		}
		return
	}

	var collector *observability.Collector
	if cfg.Metrics.Enabled {
		collector, err = observability.NewCollector(nil)
		if err != nil {
			logger.Fatal("Failed to register metrics", zap.Error(err))
		}
	}

	events := server.NewEventHub(logger)
	engine := embedding.New(graph, pol, rng, events.Broadcast, collector, logger)
	srv := server.New(cfg, engine, memory.NewEmbeddingRepository(), collector, events, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Goodbye!")
}

// runBatch embeds every VNR in the file sequentially, in arrival order, and
// writes the results as a JSON array.
func runBatch(engine *embedding.Engine, vnrsPath, outPath string, logger *zap.Logger) error {
	vnrs, err := loader.LoadVNRs(vnrsPath)
	if err != nil {
		return err
	}
	logger.Info("Running batch embedding", zap.Int("vnrs", len(vnrs)))

	results := make([]*domain.MappingResult, 0, len(vnrs))
	for i := range vnrs {
		result, err := engine.Embed(context.Background(), &vnrs[i])
		if err != nil {
			return fmt.Errorf("embedding VNR %d: %w", vnrs[i].Index, err)
		}
		results = append(results, result)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if outPath == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	logger.Info("Batch embedding finished",
		zap.Int("sessions", len(results)),
		zap.String("out", outPath),
	)
	return nil
}

// setupLogger configures the zap logger based on configuration.
func setupLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		panic("Failed to create logger: " + err.Error())
	}

	return logger
}
