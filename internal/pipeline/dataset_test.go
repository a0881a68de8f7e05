package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edupulse/internal/config"
	"edupulse/internal/generator"
	"edupulse/pkg/contracts/domain"
)

func sampleCleaned() []domain.CleanedRecord {
	return []domain.CleanedRecord{
		{
			EnrollmentID:   "e1",
			StudentID:      "STU0001",
			CourseID:       "CRS001",
			CourseName:     "Engineering Mathematics",
			Semester:       "Fall 2023",
			Name:           "Ada",
			Age:            21,
			Gender:         "F",
			Department:     "Engineering",
			AdmissionYear:  2021,
			LMSHours:       120.5,
			AttendanceRate: 91.25,
			MidtermGrade:   82,
			FinalGrade:     88,
			LetterGrade:    "B",
			Outcome:        domain.OutcomeNormal,
		},
		{
			EnrollmentID:   "e2",
			StudentID:      "STU0002",
			CourseID:       "CRS013",
			CourseName:     "History of Modern World",
			Semester:       "Spring 2024",
			Name:           "Grace",
			Age:            23,
			Gender:         "Other",
			Department:     "Arts",
			AdmissionYear:  2022,
			LMSHours:       10,
			AttendanceRate: 22.5,
			MidtermGrade:   41,
			FinalGrade:     0,
			LetterGrade:    "F",
			Outcome:        domain.OutcomeDropout,
		},
	}
}

func TestWriteAndLoadCleaned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	records := sampleCleaned()

	require.NoError(t, WriteCleaned(context.Background(), nil, path, records))

	loaded, err := LoadCleaned(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestWriteCleanedIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	records := sampleCleaned()

	require.NoError(t, WriteCleaned(context.Background(), nil, path, records))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WriteCleaned(context.Background(), nil, path, records))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second, "rewriting unchanged records must be byte identical")
}

func TestLoadCleanedMissingFile(t *testing.T) {
	_, err := LoadCleaned(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoadCleanedRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte("Foo,Bar\n1,2\n"), 0644))

	_, err := LoadCleaned(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestLoadCleanedRejectsBadNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	records := sampleCleaned()
	require.NoError(t, WriteCleaned(context.Background(), nil, path, records[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	corrupted := []byte(strings.Replace(string(data), "88.0", "eighty-eight", 1))
	require.NoError(t, os.WriteFile(path, corrupted, 0644))

	_, err = LoadCleaned(path)
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{BaseDir: dir, LogsDir: filepath.Join(dir, "logs")})
	require.NoError(t, paths.EnsureDirectories())

	gen := generator.New(config.GeneratorConfig{
		Seed:           42,
		StudentCount:   50,
		MinCourses:     2,
		MaxCourses:     3,
		DuplicateRows:  5,
		MissingAgeRate: 0.05,
		DropoutRate:    0.05,
		MissedExamRate: 0.05,
	}, nil)

	ctx := context.Background()
	dataset, err := gen.Generate(ctx)
	require.NoError(t, err)
	require.NoError(t, gen.WriteFiles(ctx, dataset, paths))

	require.NoError(t, Run(ctx, nil, config.DefaultRules(), paths))

	records, err := LoadCleaned(paths.CleanedMasterCSV)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Duplicates are gone and every surviving row is fully resolved.
	assert.Len(t, records, len(dataset.Grades))
	for _, r := range records {
		assert.False(t, math.IsNaN(r.FinalGrade), "row %s has unresolved final", r.EnrollmentID)
		assert.GreaterOrEqual(t, r.FinalGrade, 0.0)
		assert.LessOrEqual(t, r.FinalGrade, 100.0)
		assert.Contains(t, domain.LetterGrades, r.LetterGrade)
		assert.Contains(t, []domain.OutcomeLabel{
			domain.OutcomeNormal, domain.OutcomeDropout, domain.OutcomeMissedExam,
		}, r.Outcome)
	}

	// Re-running the stage on unchanged inputs is byte identical.
	first, err := os.ReadFile(paths.CleanedMasterCSV)
	require.NoError(t, err)
	require.NoError(t, Run(ctx, nil, config.DefaultRules(), paths))
	second, err := os.ReadFile(paths.CleanedMasterCSV)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
