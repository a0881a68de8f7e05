package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"edupulse/internal/config"
	"edupulse/internal/generator"
	"edupulse/internal/infrastructure"
)

func main() {
	seed := flag.Uint64("seed", 0, "override the configured RNG seed (0 keeps the config value)")
	students := flag.Int("students", 0, "override the configured student count (0 keeps the config value)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *seed != 0 {
		cfg.Generator.Seed = *seed
	}
	if *students != 0 {
		cfg.Generator.StudentCount = *students
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = paths.GetLogPath("generator.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting mock data generation",
		slog.Uint64("seed", cfg.Generator.Seed),
		slog.Int("students", cfg.Generator.StudentCount),
		slog.String("output_dir", paths.RawDir))

	ctx := context.Background()
	gen := generator.New(cfg.Generator, logger)

	dataset, err := gen.Generate(ctx)
	if err != nil {
		logger.Error("Generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := gen.WriteFiles(ctx, dataset, paths); err != nil {
		logger.Error("Failed to write raw files", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Mock data generation complete",
		slog.Int("students", len(dataset.Students)),
		slog.Int("enrollments", len(dataset.Enrollments)),
		slog.Int("grade_records", len(dataset.Grades)))
}
