package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for every file the four stages touch.
//
// Layout under the base directory:
//
//	data/
//	  raw/            (generator output: demographics, enrollment, grades)
//	  processed/      (pipeline output: cleaned master dataset)
//	  reports/        (EDA text report and workbook)
//	  visualizations/ (EDA chart artifacts)
//	logs/
//	web/
type Paths struct {
	BaseDir           string
	RawDir            string
	ProcessedDir      string
	ReportsDir        string
	VisualizationsDir string
	LogsDir           string
	WebDir            string

	// Well-known artifact files
	DemographicsCSV  string
	EnrollmentCSV    string
	GradeHistoryCSV  string
	CleanedMasterCSV string
	SummaryReportTXT string
	SummaryXLSX      string
}

// NewPaths resolves all paths from the configured directories.
func NewPaths(cfg PathsConfig) *Paths {
	base := cfg.BaseDir
	if base == "" {
		base = "data"
	}
	rawDir := filepath.Join(base, "raw")
	processedDir := filepath.Join(base, "processed")
	reportsDir := filepath.Join(base, "reports")
	visualizationsDir := filepath.Join(base, "visualizations")

	return &Paths{
		BaseDir:           base,
		RawDir:            rawDir,
		ProcessedDir:      processedDir,
		ReportsDir:        reportsDir,
		VisualizationsDir: visualizationsDir,
		LogsDir:           cfg.LogsDir,
		WebDir:            cfg.WebDir,

		DemographicsCSV:  filepath.Join(rawDir, DemographicsFile),
		EnrollmentCSV:    filepath.Join(rawDir, EnrollmentFile),
		GradeHistoryCSV:  filepath.Join(rawDir, GradeHistoryFile),
		CleanedMasterCSV: filepath.Join(processedDir, CleanedMasterFile),
		SummaryReportTXT: filepath.Join(reportsDir, SummaryReportFile),
		SummaryXLSX:      filepath.Join(reportsDir, SummaryWorkbook),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.BaseDir,
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.VisualizationsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetVisualizationPath returns the path for a chart artifact
func (p *Paths) GetVisualizationPath(filename string) string {
	return filepath.Join(p.VisualizationsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
