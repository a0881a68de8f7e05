// Package pipeline cleanses and merges the three raw tables into the
// unified cleaned master dataset: it deduplicates, imputes missing values,
// derives the dropout/missed-exam outcome label, and joins everything into
// one row per student-course pair.
package pipeline

import (
	"fmt"

	"edupulse/internal/config"
	"edupulse/internal/exporter"
	"edupulse/pkg/contracts/domain"
)

// RawTables holds the parsed raw inputs.
type RawTables struct {
	Students    []domain.Student
	Enrollments []domain.Enrollment
	Grades      []domain.GradeRecord
}

// LoadRawTables reads and parses the three generator artifacts.
// A missing or malformed input file is fatal to the stage.
func LoadRawTables(paths *config.Paths) (*RawTables, error) {
	students, err := loadStudents(paths.DemographicsCSV)
	if err != nil {
		return nil, fmt.Errorf("load demographics: %w", err)
	}
	enrollments, err := loadEnrollments(paths.EnrollmentCSV)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	grades, err := loadGrades(paths.GradeHistoryCSV)
	if err != nil {
		return nil, fmt.Errorf("load grade history: %w", err)
	}
	return &RawTables{
		Students:    students,
		Enrollments: enrollments,
		Grades:      grades,
	}, nil
}

func loadStudents(path string) ([]domain.Student, error) {
	header, rows, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(header, "StudentID", "Name", "Age", "Gender", "Department", "AdmissionYear")
	if err != nil {
		return nil, err
	}

	students := make([]domain.Student, 0, len(rows))
	for i, row := range rows {
		age, err := exporter.ParseFloat(row[idx["Age"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad age %q: %w", i+2, row[idx["Age"]], err)
		}
		year, err := exporter.ParseInt(row[idx["AdmissionYear"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad admission year %q: %w", i+2, row[idx["AdmissionYear"]], err)
		}
		students = append(students, domain.Student{
			StudentID:     row[idx["StudentID"]],
			Name:          row[idx["Name"]],
			Age:           age,
			Gender:        row[idx["Gender"]],
			Department:    row[idx["Department"]],
			AdmissionYear: year,
		})
	}
	return students, nil
}

func loadEnrollments(path string) ([]domain.Enrollment, error) {
	header, rows, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(header, "EnrollmentID", "StudentID", "CourseID", "CourseName", "Semester")
	if err != nil {
		return nil, err
	}

	enrollments := make([]domain.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, domain.Enrollment{
			EnrollmentID: row[idx["EnrollmentID"]],
			StudentID:    row[idx["StudentID"]],
			CourseID:     row[idx["CourseID"]],
			CourseName:   row[idx["CourseName"]],
			Semester:     row[idx["Semester"]],
		})
	}
	return enrollments, nil
}

func loadGrades(path string) ([]domain.GradeRecord, error) {
	header, rows, err := exporter.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(header, "StudentID", "CourseID", "LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade")
	if err != nil {
		return nil, err
	}

	grades := make([]domain.GradeRecord, 0, len(rows))
	for i, row := range rows {
		numeric := make(map[string]float64, 4)
		for _, col := range []string{"LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade"} {
			v, err := exporter.ParseFloat(row[idx[col]])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s %q: %w", i+2, col, row[idx[col]], err)
			}
			numeric[col] = v
		}
		grades = append(grades, domain.GradeRecord{
			StudentID:      row[idx["StudentID"]],
			CourseID:       row[idx["CourseID"]],
			LMSHours:       numeric["LMS_Hours"],
			AttendanceRate: numeric["Attendance_Rate"],
			MidtermGrade:   numeric["Midterm_Grade"],
			FinalGrade:     numeric["Final_Grade"],
		})
	}
	return grades, nil
}

// headerIndex maps required column names to their positions.
func headerIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return idx, nil
}
