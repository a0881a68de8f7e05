package generator

import (
	"context"
	"fmt"
	"log/slog"

	"edupulse/internal/config"
	"edupulse/internal/exporter"
	"edupulse/pkg/contracts/domain"
)

// CSV headers for the three raw tables. These are the wire format consumed
// by the pipeline stage; do not reorder.
var (
	demographicsHeader = []string{"StudentID", "Name", "Age", "Gender", "Department", "AdmissionYear"}
	enrollmentHeader   = []string{"EnrollmentID", "StudentID", "CourseID", "CourseName", "Semester"}
	gradeHistoryHeader = []string{"StudentID", "CourseID", "LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade"}
)

// WriteFiles persists the raw dataset as the three CSV artifacts.
// Any write failure is fatal to the stage.
func (g *Generator) WriteFiles(ctx context.Context, dataset *RawDataset, paths *config.Paths) error {
	writer := exporter.NewCSVWriter(g.logger)

	if err := writer.WriteSimpleCSV(paths.DemographicsCSV, demographicsHeader, studentRows(dataset.Students)); err != nil {
		return fmt.Errorf("failed to write demographics: %w", err)
	}
	if err := writer.WriteSimpleCSV(paths.EnrollmentCSV, enrollmentHeader, enrollmentRows(dataset.Enrollments)); err != nil {
		return fmt.Errorf("failed to write enrollments: %w", err)
	}
	if err := writer.WriteSimpleCSV(paths.GradeHistoryCSV, gradeHistoryHeader, gradeRows(dataset.Grades)); err != nil {
		return fmt.Errorf("failed to write grade history: %w", err)
	}

	g.logger.InfoContext(ctx, "raw tables written",
		slog.String("demographics", paths.DemographicsCSV),
		slog.String("enrollment", paths.EnrollmentCSV),
		slog.String("grade_history", paths.GradeHistoryCSV))
	return nil
}

func studentRows(students []domain.Student) [][]string {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			s.StudentID,
			s.Name,
			exporter.FormatFloat(s.Age),
			s.Gender,
			s.Department,
			exporter.FormatInt(s.AdmissionYear),
		})
	}
	return rows
}

func enrollmentRows(enrollments []domain.Enrollment) [][]string {
	rows := make([][]string, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, []string{
			e.EnrollmentID,
			e.StudentID,
			e.CourseID,
			e.CourseName,
			e.Semester,
		})
	}
	return rows
}

func gradeRows(grades []domain.GradeRecord) [][]string {
	rows := make([][]string, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []string{
			g.StudentID,
			g.CourseID,
			exporter.FormatFloat(g.LMSHours),
			exporter.FormatFloat2(g.AttendanceRate),
			exporter.FormatFloat(g.MidtermGrade),
			exporter.FormatFloat(g.FinalGrade),
		})
	}
	return rows
}
