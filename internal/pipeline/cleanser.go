package pipeline

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// Cleanser merges, deduplicates and imputes the raw tables.
type Cleanser struct {
	rules  config.Rules
	logger *slog.Logger
}

// NewCleanser creates a cleanser with the given business rules.
func NewCleanser(rules config.Rules, logger *slog.Logger) *Cleanser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleanser{
		rules:  rules,
		logger: logger.With(slog.String("component", "cleanser")),
	}
}

// Clean runs the full cleansing pass over the raw tables. The result is
// deterministic given identical input: row order follows enrollment order,
// so re-running on unchanged raw files yields identical output.
func (c *Cleanser) Clean(ctx context.Context, raw *RawTables) ([]domain.CleanedRecord, error) {
	studentsByID := make(map[string]domain.Student, len(raw.Students))
	for _, s := range raw.Students {
		studentsByID[s.StudentID] = s
	}

	type gradeKey struct{ studentID, courseID string }
	gradesByKey := make(map[gradeKey]domain.GradeRecord, len(raw.Grades))
	for _, g := range raw.Grades {
		gradesByKey[gradeKey{g.StudentID, g.CourseID}] = g
	}

	var (
		records    []domain.CleanedRecord
		orphaned   int
		gradeless  int
		duplicates int
		seen       = make(map[string]struct{})
	)

	for _, e := range raw.Enrollments {
		student, ok := studentsByID[e.StudentID]
		if !ok {
			// Referential-integrity gap: recover locally by dropping the row.
			c.logger.WarnContext(ctx, "enrollment references unknown student, dropping row",
				slog.String("enrollment_id", e.EnrollmentID),
				slog.String("student_id", e.StudentID))
			orphaned++
			continue
		}

		grade, ok := gradesByKey[gradeKey{e.StudentID, e.CourseID}]
		if !ok {
			c.logger.WarnContext(ctx, "enrollment has no grade record, dropping row",
				slog.String("enrollment_id", e.EnrollmentID),
				slog.String("student_id", e.StudentID),
				slog.String("course_id", e.CourseID))
			gradeless++
			continue
		}

		key := dedupeKey(e, student, grade)
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		records = append(records, domain.CleanedRecord{
			EnrollmentID:   e.EnrollmentID,
			StudentID:      e.StudentID,
			CourseID:       e.CourseID,
			CourseName:     e.CourseName,
			Semester:       e.Semester,
			Name:           student.Name,
			Age:            student.Age,
			Gender:         student.Gender,
			Department:     student.Department,
			AdmissionYear:  student.AdmissionYear,
			LMSHours:       grade.LMSHours,
			AttendanceRate: grade.AttendanceRate,
			MidtermGrade:   grade.MidtermGrade,
			FinalGrade:     grade.FinalGrade,
		})
	}

	c.imputeAges(records)

	dropouts, missedExams := 0, 0
	for i := range records {
		r := &records[i]
		r.Outcome = c.deriveOutcome(r)
		switch r.Outcome {
		case domain.OutcomeDropout:
			r.FinalGrade = 0
			dropouts++
		case domain.OutcomeMissedExam:
			r.FinalGrade = r.MidtermGrade
			missedExams++
		}

		r.MidtermGrade = clampGrade(r.MidtermGrade)
		r.FinalGrade = clampGrade(r.FinalGrade)
		r.LetterGrade = domain.LetterGrade(r.FinalGrade)
	}

	c.logger.InfoContext(ctx, "cleansing complete",
		slog.Int("rows", len(records)),
		slog.Int("duplicates_removed", duplicates),
		slog.Int("orphaned_enrollments_dropped", orphaned),
		slog.Int("gradeless_enrollments_dropped", gradeless),
		slog.Int("dropouts_inferred", dropouts),
		slog.Int("missed_exams_inferred", missedExams))

	return records, nil
}

// deriveOutcome assigns the mutually-exclusive outcome label. A record with
// attendance below the cutoff and a missing or zero final score is a
// dropout; a missing final above the cutoff is a missed exam.
func (c *Cleanser) deriveOutcome(r *domain.CleanedRecord) domain.OutcomeLabel {
	missingFinal := math.IsNaN(r.FinalGrade)
	switch {
	case r.AttendanceRate < c.rules.DropoutAttendanceCutoff && (missingFinal || r.FinalGrade == 0):
		return domain.OutcomeDropout
	case missingFinal:
		return domain.OutcomeMissedExam
	default:
		return domain.OutcomeNormal
	}
}

// imputeAges fills missing ages with the median age of the student's
// department cohort.
func (c *Cleanser) imputeAges(records []domain.CleanedRecord) {
	byDept := make(map[string][]float64)
	var all []float64
	for _, r := range records {
		if !math.IsNaN(r.Age) {
			byDept[r.Department] = append(byDept[r.Department], r.Age)
			all = append(all, r.Age)
		}
	}
	if len(all) == 0 {
		return
	}

	medians := make(map[string]float64, len(byDept))
	for dept, ages := range byDept {
		medians[dept] = median(ages)
	}
	// A department with no known ages falls back to the population median.
	population := median(all)

	imputed := 0
	for i := range records {
		if math.IsNaN(records[i].Age) {
			m, ok := medians[records[i].Department]
			if !ok {
				m = population
			}
			records[i].Age = m
			imputed++
		}
	}
	if imputed > 0 {
		c.logger.Debug("imputed missing ages with department medians",
			slog.Int("count", imputed))
	}
}

// dedupeKey builds an exact-row identity over every merged field. Formatted
// values are used so that two NaN fields compare equal.
func dedupeKey(e domain.Enrollment, s domain.Student, g domain.GradeRecord) string {
	parts := []string{
		e.EnrollmentID, e.StudentID, e.CourseID, e.CourseName, e.Semester,
		s.Name, formatKeyFloat(s.Age), s.Gender, s.Department,
		formatKeyFloat(float64(s.AdmissionYear)),
		formatKeyFloat(g.LMSHours), formatKeyFloat(g.AttendanceRate),
		formatKeyFloat(g.MidtermGrade), formatKeyFloat(g.FinalGrade),
	}
	return strings.Join(parts, "\x1f")
}

func formatKeyFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// median returns the midpoint of a sample: the middle value for odd-length
// input, the mean of the two central values for even-length input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func clampGrade(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
