package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"edupulse/internal/config"
	"edupulse/internal/eda"
	"edupulse/internal/infrastructure"
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

	cfg.Logging.FilePath = paths.GetLogPath("eda.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting exploratory analysis",
		slog.String("input", paths.CleanedMasterCSV),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("visualizations_dir", paths.VisualizationsDir))

	if err := eda.Run(context.Background(), logger, cfg.Rules, paths); err != nil {
		logger.Error("Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Exploratory analysis complete",
		slog.String("report", paths.SummaryReportTXT),
		slog.String("workbook", paths.SummaryXLSX))
}
