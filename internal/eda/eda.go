package eda

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"edupulse/internal/charts"
	"edupulse/internal/config"
	"edupulse/internal/exporter"
	"edupulse/internal/pipeline"
	"edupulse/pkg/contracts/domain"
)

// Run executes the EDA stage end to end: load the cleaned dataset, build the
// report, write the text report and the workbook, and render all charts.
func Run(ctx context.Context, logger *slog.Logger, rules config.Rules, paths *config.Paths) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "eda"))

	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := pipeline.LoadCleaned(paths.CleanedMasterCSV)
	if err != nil {
		return fmt.Errorf("failed to load cleaned dataset: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("cleaned dataset is empty: %s", paths.CleanedMasterCSV)
	}
	logger.InfoContext(ctx, "cleaned dataset loaded",
		slog.Int("records", len(records)))

	report := Build(records, rules)

	if err := writeTextReport(report, paths.SummaryReportTXT); err != nil {
		return fmt.Errorf("failed to write summary report: %w", err)
	}
	logger.InfoContext(ctx, "summary report written",
		slog.String("path", paths.SummaryReportTXT),
		slog.Int("at_risk", len(report.AtRisk)),
		slog.Int("outliers", len(report.Outliers)))

	if err := writeWorkbook(logger, report, paths.SummaryXLSX); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	renderer := charts.NewRenderer(paths.VisualizationsDir, logger)
	if err := renderer.RenderAll(records, report.Correlations); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	return nil
}

func writeTextReport(report *Report, path string) error {
	return os.WriteFile(path, []byte(report.RenderText()), 0644)
}

// writeWorkbook exports the report tables as a multi-sheet Excel workbook.
func writeWorkbook(logger *slog.Logger, report *Report, path string) error {
	cohortRows := make([][]interface{}, 0, len(report.Cohorts))
	for _, c := range report.Cohorts {
		cohortRows = append(cohortRows, []interface{}{
			c.Department, c.Count,
			c.MeanFinal, c.MedianFinal, c.StdDevFinal,
			c.MeanAttendance, c.MedianAttendance, c.StdDevAttendance,
		})
	}

	corrHeader := append([]string{"Variable"}, report.Correlations.Variables...)
	corrRows := make([][]interface{}, 0, len(report.Correlations.Variables))
	for i, v := range report.Correlations.Variables {
		row := []interface{}{v}
		for j := range report.Correlations.Variables {
			row = append(row, report.Correlations.Values[i][j])
		}
		corrRows = append(corrRows, row)
	}

	gradeRows := make([][]interface{}, 0, len(report.LetterGrades))
	for _, gc := range report.LetterGrades {
		gradeRows = append(gradeRows, []interface{}{gc.Grade, gc.Count})
	}

	atRiskRows := recordRows(report.AtRisk)
	outlierRows := recordRows(report.Outliers)

	sheets := []exporter.Sheet{
		{
			Name: "Cohort Statistics",
			Header: []string{"Department", "Count", "Mean Final", "Median Final",
				"StdDev Final", "Mean Attendance", "Median Attendance", "StdDev Attendance"},
			Rows: cohortRows,
		},
		{Name: "Correlations", Header: corrHeader, Rows: corrRows},
		{Name: "Letter Grades", Header: []string{"Grade", "Count"}, Rows: gradeRows},
		{Name: "At-Risk Students", Header: recordHeader, Rows: atRiskRows},
		{Name: "Grade Outliers", Header: recordHeader, Rows: outlierRows},
	}

	return exporter.WriteWorkbook(logger, path, sheets)
}

var recordHeader = []string{
	"StudentID", "Name", "Department", "CourseID", "Semester",
	"Attendance_Rate", "Midterm_Grade", "Final_Grade", "Letter_Grade", "Outcome",
}

func recordRows(records []domain.CleanedRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.StudentID, r.Name, r.Department, r.CourseID, r.Semester,
			r.AttendanceRate, r.MidtermGrade, r.FinalGrade, r.LetterGrade, string(r.Outcome),
		})
	}
	return rows
}
