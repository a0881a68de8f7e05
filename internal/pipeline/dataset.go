package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"edupulse/internal/config"
	"edupulse/internal/exporter"
	"edupulse/pkg/contracts/domain"
)

// cleanedHeader is the wire format of the unified dataset, consumed by the
// EDA reporter and the dashboard. Do not reorder.
var cleanedHeader = []string{
	"EnrollmentID", "StudentID", "CourseID", "CourseName", "Semester",
	"Name", "Age", "Gender", "Department", "AdmissionYear",
	"LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade",
	"Letter_Grade", "Outcome",
}

// WriteCleaned writes the unified dataset atomically: either the whole file
// appears or no output is written at all.
func WriteCleaned(ctx context.Context, logger *slog.Logger, path string, records []domain.CleanedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.EnrollmentID,
			r.StudentID,
			r.CourseID,
			r.CourseName,
			r.Semester,
			r.Name,
			exporter.FormatFloat(r.Age),
			r.Gender,
			r.Department,
			exporter.FormatInt(r.AdmissionYear),
			exporter.FormatFloat(r.LMSHours),
			exporter.FormatFloat2(r.AttendanceRate),
			exporter.FormatFloat(r.MidtermGrade),
			exporter.FormatFloat(r.FinalGrade),
			r.LetterGrade,
			string(r.Outcome),
		})
	}

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WriteAtomicCSV(path, cleanedHeader, rows); err != nil {
		return fmt.Errorf("write cleaned dataset: %w", err)
	}
	return nil
}

// LoadCleaned reads the unified dataset back into memory. Both the EDA
// reporter and the dashboard consume the table through this loader.
func LoadCleaned(path string) ([]domain.CleanedRecord, error) {
	header, rows, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(header, cleanedHeader...)
	if err != nil {
		return nil, fmt.Errorf("cleaned dataset %s: %w", path, err)
	}

	records := make([]domain.CleanedRecord, 0, len(rows))
	for i, row := range rows {
		numeric := make(map[string]float64, 4)
		for _, col := range []string{"Age", "LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade"} {
			v, err := exporter.ParseFloat(row[idx[col]])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s %q: %w", i+2, col, row[idx[col]], err)
			}
			numeric[col] = v
		}
		year, err := exporter.ParseInt(row[idx["AdmissionYear"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad AdmissionYear %q: %w", i+2, row[idx["AdmissionYear"]], err)
		}

		records = append(records, domain.CleanedRecord{
			EnrollmentID:   row[idx["EnrollmentID"]],
			StudentID:      row[idx["StudentID"]],
			CourseID:       row[idx["CourseID"]],
			CourseName:     row[idx["CourseName"]],
			Semester:       row[idx["Semester"]],
			Name:           row[idx["Name"]],
			Age:            numeric["Age"],
			Gender:         row[idx["Gender"]],
			Department:     row[idx["Department"]],
			AdmissionYear:  year,
			LMSHours:       numeric["LMS_Hours"],
			AttendanceRate: numeric["Attendance_Rate"],
			MidtermGrade:   numeric["Midterm_Grade"],
			FinalGrade:     numeric["Final_Grade"],
			LetterGrade:    row[idx["Letter_Grade"]],
			Outcome:        domain.OutcomeLabel(row[idx["Outcome"]]),
		})
	}
	return records, nil
}

// Run executes the full pipeline stage: load raw tables, cleanse, write the
// unified dataset.
func Run(ctx context.Context, logger *slog.Logger, rules config.Rules, paths *config.Paths) error {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := LoadRawTables(paths)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "raw tables loaded",
		slog.Int("students", len(raw.Students)),
		slog.Int("enrollments", len(raw.Enrollments)),
		slog.Int("grade_records", len(raw.Grades)))

	cleanser := NewCleanser(rules, logger)
	records, err := cleanser.Clean(ctx, raw)
	if err != nil {
		return err
	}

	if err := WriteCleaned(ctx, logger, paths.CleanedMasterCSV, records); err != nil {
		return err
	}
	logger.InfoContext(ctx, "cleaned master dataset written",
		slog.String("path", paths.CleanedMasterCSV),
		slog.Int("rows", len(records)))
	return nil
}
