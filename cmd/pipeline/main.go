package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"edupulse/internal/config"
	"edupulse/internal/infrastructure"
	"edupulse/internal/pipeline"
)

func main() {
	baseDir := flag.String("data", "", "base data directory (defaults to the configured path)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *baseDir != "" {
		cfg.Paths.BaseDir = *baseDir
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = paths.GetLogPath("pipeline.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting cleansing pipeline",
		slog.String("input_dir", paths.RawDir),
		slog.String("output", paths.CleanedMasterCSV))

	if err := pipeline.Run(context.Background(), logger, cfg.Rules, paths); err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Cleansing pipeline complete",
		slog.String("output", paths.CleanedMasterCSV))
}
