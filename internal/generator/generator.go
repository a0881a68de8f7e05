// Package generator synthesizes the three raw tables of the student
// information system: demographics, course enrollment and grade history.
// Output is deterministic for a given seed, and dirty data (duplicates,
// missing values) is injected on purpose to exercise the cleansing pipeline.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// RawDataset holds the generated tables before they are written to disk.
type RawDataset struct {
	Students    []domain.Student
	Enrollments []domain.Enrollment
	Grades      []domain.GradeRecord
}

// Generator produces the synthetic raw dataset.
type Generator struct {
	cfg    config.GeneratorConfig
	logger *slog.Logger
}

// New creates a generator with the given configuration.
func New(cfg config.GeneratorConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "generator")),
	}
}

// Generate builds the full raw dataset in memory.
func (g *Generator) Generate(ctx context.Context) (*RawDataset, error) {
	rng := rand.New(rand.NewSource(int64(g.cfg.Seed)))
	faker := gofakeit.New(g.cfg.Seed)

	g.logger.InfoContext(ctx, "generating raw dataset",
		slog.Uint64("seed", g.cfg.Seed),
		slog.Int("student_count", g.cfg.StudentCount))

	students := g.generateStudents(rng, faker)
	enrollments, grades, err := g.generateEnrollments(rng, students)
	if err != nil {
		return nil, err
	}

	g.injectDuplicates(rng, &enrollments)
	g.injectMissingFinals(rng, grades)

	g.logger.InfoContext(ctx, "raw dataset generated",
		slog.Int("students", len(students)),
		slog.Int("enrollments", len(enrollments)),
		slog.Int("grade_records", len(grades)))

	return &RawDataset{
		Students:    students,
		Enrollments: enrollments,
		Grades:      grades,
	}, nil
}

// generateStudents creates the demographics table, clearing a configured
// fraction of ages so the pipeline has something to impute.
func (g *Generator) generateStudents(rng *rand.Rand, faker *gofakeit.Faker) []domain.Student {
	genders := []string{"M", "F", "Other"}
	students := make([]domain.Student, 0, g.cfg.StudentCount)

	for i := 1; i <= g.cfg.StudentCount; i++ {
		students = append(students, domain.Student{
			StudentID:     fmt.Sprintf(config.StudentIDFormat, i),
			Name:          faker.Name(),
			Age:           float64(18 + rng.Intn(9)), // 18..26
			Gender:        genders[rng.Intn(len(genders))],
			Department:    config.Departments[rng.Intn(len(config.Departments))],
			AdmissionYear: 2019 + rng.Intn(6), // 2019..2024
		})
	}

	for i := range students {
		if rng.Float64() < g.cfg.MissingAgeRate {
			students[i].Age = math.NaN()
		}
	}
	return students
}

// generateEnrollments assigns each student 2-3 courses from their own
// department's catalog and produces the correlated grade history: LMS hours
// drive the final grade, attendance tracks both, and the midterm roughly
// predicts the final.
func (g *Generator) generateEnrollments(rng *rand.Rand, students []domain.Student) ([]domain.Enrollment, []domain.GradeRecord, error) {
	var enrollments []domain.Enrollment
	var grades []domain.GradeRecord

	for _, student := range students {
		catalog := config.DepartmentCatalog(student.Department)
		if len(catalog) == 0 {
			return nil, nil, fmt.Errorf("no course catalog for department %q", student.Department)
		}

		span := g.cfg.MaxCourses - g.cfg.MinCourses + 1
		taken := g.cfg.MinCourses + rng.Intn(span)
		if taken > len(catalog) {
			taken = len(catalog)
		}

		for _, idx := range rng.Perm(len(catalog))[:taken] {
			course := catalog[idx]

			enrollmentID, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate enrollment id: %w", err)
			}

			enrollments = append(enrollments, domain.Enrollment{
				EnrollmentID: enrollmentID.String(),
				StudentID:    student.StudentID,
				CourseID:     course.ID,
				CourseName:   course.Name,
				Semester:     config.Semesters[rng.Intn(len(config.Semesters))],
			})

			lms := round1(uniform(rng, 5.0, 150.0))
			base := 40 + (lms/150.0)*55
			final := clamp(base+uniform(rng, -10, 10), 0, 100)
			attendance := clamp((lms/150.0)*100+uniform(rng, -5, 15), 20, 100)

			grades = append(grades, domain.GradeRecord{
				StudentID:      student.StudentID,
				CourseID:       course.ID,
				LMSHours:       lms,
				AttendanceRate: round2(attendance),
				MidtermGrade:   round1(final*0.8 + uniform(rng, -10, 12)),
				FinalGrade:     round1(final),
			})
		}
	}
	return enrollments, grades, nil
}

// injectDuplicates appends exact copies of randomly chosen enrollment rows.
func (g *Generator) injectDuplicates(rng *rand.Rand, enrollments *[]domain.Enrollment) {
	rows := *enrollments
	if len(rows) == 0 {
		return
	}
	for i := 0; i < g.cfg.DuplicateRows; i++ {
		rows = append(rows, rows[rng.Intn(len(rows))])
	}
	*enrollments = rows
}

// injectMissingFinals clears final grades for a fraction of records:
// dropouts additionally get very low attendance, missed exams keep high
// attendance, so the pipeline can tell the two apart.
func (g *Generator) injectMissingFinals(rng *rand.Rand, grades []domain.GradeRecord) {
	dropouts, missed := 0, 0
	for i := range grades {
		r := rng.Float64()
		switch {
		case r < g.cfg.DropoutRate:
			grades[i].FinalGrade = math.NaN()
			grades[i].AttendanceRate = round1(uniform(rng, 5, 30))
			dropouts++
		case r < g.cfg.DropoutRate+g.cfg.MissedExamRate:
			grades[i].FinalGrade = math.NaN()
			grades[i].AttendanceRate = round1(uniform(rng, 85, 100))
			missed++
		}
	}
	g.logger.Debug("injected missing final grades",
		slog.Int("dropouts", dropouts),
		slog.Int("missed_exams", missed))
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
