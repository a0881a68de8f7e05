// Package services holds the business logic behind the HTTP handlers: the
// in-memory dataset with its dashboard queries, stage execution and health.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"edupulse/internal/analytics"
	"edupulse/internal/config"
	"edupulse/internal/metrics"
	"edupulse/internal/pipeline"
	"edupulse/pkg/contracts/domain"
)

// Filter narrows dashboard queries. Zero values mean "all".
type Filter struct {
	Department string
	CourseID   string
	Semester   string
	AtRiskOnly bool
}

// MetricCards are the headline numbers at the top of the dashboard.
type MetricCards struct {
	TotalStudents     int     `json:"total_students"`
	TotalRecords      int     `json:"total_records"`
	AverageFinal      float64 `json:"average_final"`
	AverageAttendance float64 `json:"average_attendance"`
	AtRiskCount       int     `json:"at_risk_count"`
	DropoutCount      int     `json:"dropout_count"`
	MissedExamCount   int     `json:"missed_exam_count"`
}

// FilterOptions lists the distinct values the dashboard filter widgets offer.
type FilterOptions struct {
	Departments []string       `json:"departments"`
	Courses     []CourseOption `json:"courses"`
	Semesters   []string       `json:"semesters"`
}

// CourseOption pairs a course ID with its display name.
type CourseOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentDetail is the drill-down view of one student.
type StudentDetail struct {
	StudentID     string  `json:"student_id"`
	Name          string  `json:"name"`
	Age           float64 `json:"age"`
	Gender        string  `json:"gender"`
	Department    string  `json:"department"`
	AdmissionYear int     `json:"admission_year"`

	Enrollments   []domain.CleanedRecord `json:"enrollments"`
	AtRisk        bool                   `json:"at_risk"`
	MeanFinal     float64                `json:"mean_final"`
	AvgAttendance float64                `json:"avg_attendance"`
	TotalLMSHours float64                `json:"total_lms_hours"`
}

// DataService owns the in-memory cleaned dataset and answers every
// dashboard query against it.
type DataService struct {
	mu       sync.RWMutex
	records  []domain.CleanedRecord
	loadedAt time.Time

	paths   *config.Paths
	rules   config.Rules
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewDataService creates the service. The dataset is not loaded until Load
// is called; queries against an unloaded service return empty results.
func NewDataService(paths *config.Paths, rules config.Rules, logger *slog.Logger, m *metrics.Metrics) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		paths:   paths,
		rules:   rules,
		logger:  logger.With(slog.String("component", "data_service")),
		metrics: m,
	}
}

// Load reads the cleaned master dataset from disk and swaps it in.
func (s *DataService) Load(ctx context.Context) error {
	records, err := pipeline.LoadCleaned(s.paths.CleanedMasterCSV)
	if err != nil {
		return fmt.Errorf("failed to load cleaned dataset: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.loadedAt = time.Now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DatasetReloads.Inc()
		s.metrics.DatasetRowsGauge.Set(float64(len(records)))
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("records", len(records)),
		slog.String("path", s.paths.CleanedMasterCSV))
	return nil
}

// Loaded reports whether a dataset is resident.
func (s *DataService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records) > 0
}

// LoadedAt returns the time of the last successful Load.
func (s *DataService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// RowCount returns the resident row count.
func (s *DataService) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns the filtered rows, in dataset order.
func (s *DataService) Records(filter Filter) []domain.CleanedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CleanedRecord, 0)
	for _, r := range s.records {
		if !s.matches(r, filter) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *DataService) matches(r domain.CleanedRecord, filter Filter) bool {
	if filter.Department != "" && r.Department != filter.Department {
		return false
	}
	if filter.CourseID != "" && r.CourseID != filter.CourseID {
		return false
	}
	if filter.Semester != "" && r.Semester != filter.Semester {
		return false
	}
	if filter.AtRiskOnly && !analytics.AtRisk(r, s.rules) {
		return false
	}
	return true
}

// Metrics computes the headline cards over the filtered rows.
func (s *DataService) Metrics(filter Filter) MetricCards {
	rows := s.Records(filter)

	cards := MetricCards{TotalRecords: len(rows)}
	if len(rows) == 0 {
		return cards
	}

	students := make(map[string]struct{})
	var finalSum, attendanceSum float64
	for _, r := range rows {
		students[r.StudentID] = struct{}{}
		finalSum += r.FinalGrade
		attendanceSum += r.AttendanceRate

		if analytics.AtRisk(r, s.rules) {
			cards.AtRiskCount++
		}
		switch r.Outcome {
		case domain.OutcomeDropout:
			cards.DropoutCount++
		case domain.OutcomeMissedExam:
			cards.MissedExamCount++
		}
	}
	cards.TotalStudents = len(students)
	cards.AverageFinal = finalSum / float64(len(rows))
	cards.AverageAttendance = attendanceSum / float64(len(rows))
	return cards
}

// FilterOptions lists the selectable filter values present in the dataset.
func (s *DataService) FilterOptions() FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courseNames := make(map[string]string)
	semesters := make(map[string]struct{})
	for _, r := range s.records {
		courseNames[r.CourseID] = r.CourseName
		semesters[r.Semester] = struct{}{}
	}

	opts := FilterOptions{Departments: config.Departments}

	courseIDs := make([]string, 0, len(courseNames))
	for id := range courseNames {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)
	for _, id := range courseIDs {
		opts.Courses = append(opts.Courses, CourseOption{ID: id, Name: courseNames[id]})
	}

	for sem := range semesters {
		opts.Semesters = append(opts.Semesters, sem)
	}
	sort.Strings(opts.Semesters)
	return opts
}

// Student assembles the drill-down view for one student ID. The boolean is
// false when the student has no rows in the dataset.
func (s *DataService) Student(id string) (StudentDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var detail StudentDetail
	var finalSum, attendanceSum float64
	for _, r := range s.records {
		if r.StudentID != id {
			continue
		}
		if len(detail.Enrollments) == 0 {
			detail.StudentID = r.StudentID
			detail.Name = r.Name
			detail.Age = r.Age
			detail.Gender = r.Gender
			detail.Department = r.Department
			detail.AdmissionYear = r.AdmissionYear
		}
		detail.Enrollments = append(detail.Enrollments, r)
		finalSum += r.FinalGrade
		attendanceSum += r.AttendanceRate
		detail.TotalLMSHours += r.LMSHours
		if analytics.AtRisk(r, s.rules) {
			detail.AtRisk = true
		}
	}
	if len(detail.Enrollments) == 0 {
		return StudentDetail{}, false
	}
	n := float64(len(detail.Enrollments))
	detail.MeanFinal = finalSum / n
	detail.AvgAttendance = attendanceSum / n
	return detail, true
}

// Heatmap bins attendance against final grade over the filtered rows.
func (s *DataService) Heatmap(filter Filter, bins int) analytics.Heatmap {
	return analytics.AttendanceGradeHeatmap(s.Records(filter), bins)
}

// Journey builds the department-semester-grade flow over the filtered rows.
func (s *DataService) Journey(filter Filter) analytics.JourneyFlow {
	return analytics.StudentJourney(s.Records(filter))
}

// Rules exposes the active analysis rules.
func (s *DataService) Rules() config.Rules {
	return s.rules
}
