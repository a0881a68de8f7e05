package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edupulse/pkg/contracts/domain"
)

func trendRecord(dept, semester string, year int, final float64) domain.CleanedRecord {
	return domain.CleanedRecord{
		Department:    dept,
		Semester:      semester,
		AdmissionYear: year,
		FinalGrade:    final,
		LetterGrade:   domain.LetterGrade(final),
	}
}

func TestSemesterTrend(t *testing.T) {
	records := []domain.CleanedRecord{
		trendRecord("Engineering", "Spring 2024", 2021, 80),
		trendRecord("Engineering", "Fall 2023", 2021, 70),
		trendRecord("Engineering", "Fall 2023", 2021, 90),
		trendRecord("Arts", "Fall 2023", 2021, 60),
	}

	trend := SemesterTrend(records)
	require.Len(t, trend, 3)

	// Chronological, then fixed department order within a semester.
	assert.Equal(t, TrendPoint{Semester: "Fall 2023", Department: "Engineering", MeanFinal: 80}, trend[0])
	assert.Equal(t, TrendPoint{Semester: "Fall 2023", Department: "Arts", MeanFinal: 60}, trend[1])
	assert.Equal(t, TrendPoint{Semester: "Spring 2024", Department: "Engineering", MeanFinal: 80}, trend[2])
}

func TestCohortComparison(t *testing.T) {
	records := []domain.CleanedRecord{
		trendRecord("Engineering", "Fall 2023", 2022, 90),
		trendRecord("Engineering", "Fall 2023", 2021, 70),
		trendRecord("Engineering", "Fall 2023", 2021, 80),
		trendRecord("Business", "Fall 2023", 2021, 65),
	}

	cohorts := CohortComparison(records)
	require.Len(t, cohorts, 3)

	assert.Equal(t, CohortPoint{Department: "Engineering", AdmissionYear: 2021, MeanFinal: 75}, cohorts[0])
	assert.Equal(t, CohortPoint{Department: "Business", AdmissionYear: 2021, MeanFinal: 65}, cohorts[1])
	assert.Equal(t, CohortPoint{Department: "Engineering", AdmissionYear: 2022, MeanFinal: 90}, cohorts[2])
}

func TestAttendanceGradeHeatmap(t *testing.T) {
	records := []domain.CleanedRecord{
		{AttendanceRate: 5, FinalGrade: 5},
		{AttendanceRate: 95, FinalGrade: 95},
		{AttendanceRate: 100, FinalGrade: 100}, // top edge lands in the last bucket
		{AttendanceRate: 50, FinalGrade: 50},
	}

	h := AttendanceGradeHeatmap(records, 10)
	require.Len(t, h.XBuckets, 10)
	require.Len(t, h.YBuckets, 10)
	assert.Equal(t, "0-10", h.XBuckets[0])
	assert.Equal(t, "90-100", h.XBuckets[9])

	assert.Equal(t, 1, h.Counts[0][0])
	assert.Equal(t, 2, h.Counts[9][9])
	assert.Equal(t, 1, h.Counts[5][5])

	total := 0
	for _, row := range h.Counts {
		for _, n := range row {
			total += n
		}
	}
	assert.Equal(t, len(records), total, "every record lands in exactly one cell")
}

func TestAttendanceGradeHeatmapDefaultBins(t *testing.T) {
	h := AttendanceGradeHeatmap(nil, 0)
	assert.Len(t, h.XBuckets, 12)
}

func TestStudentJourney(t *testing.T) {
	records := []domain.CleanedRecord{
		trendRecord("Engineering", "Fall 2023", 2021, 95),   // A
		trendRecord("Engineering", "Fall 2023", 2021, 92),   // A
		trendRecord("Engineering", "Spring 2024", 2021, 72), // C
		trendRecord("Arts", "Fall 2023", 2021, 55),          // F
	}

	flow := StudentJourney(records)

	// Departments, then semesters chronologically, then grade bands.
	assert.Equal(t, []string{"Engineering", "Arts", "Fall 2023", "Spring 2024", "A", "C", "F"}, flow.Nodes)

	wantLinks := []JourneyLink{
		{Source: "Engineering", Target: "Fall 2023", Count: 2},
		{Source: "Engineering", Target: "Spring 2024", Count: 1},
		{Source: "Arts", Target: "Fall 2023", Count: 1},
		{Source: "Fall 2023", Target: "A", Count: 2},
		{Source: "Fall 2023", Target: "F", Count: 1},
		{Source: "Spring 2024", Target: "C", Count: 1},
	}
	assert.Equal(t, wantLinks, flow.Links)

	// Flow is conserved: department outflow equals grade inflow.
	var deptOut, gradeIn int
	for _, l := range flow.Links {
		switch l.Source {
		case "Engineering", "Arts":
			deptOut += l.Count
		default:
			gradeIn += l.Count
		}
	}
	assert.Equal(t, deptOut, gradeIn)
}

func TestSemesterSortKey(t *testing.T) {
	assert.Less(t, semesterSortKey("Spring 2023"), semesterSortKey("Summer 2023"))
	assert.Less(t, semesterSortKey("Summer 2023"), semesterSortKey("Fall 2023"))
	assert.Less(t, semesterSortKey("Fall 2023"), semesterSortKey("Spring 2024"))
	assert.Equal(t, 0, semesterSortKey("garbage"))
}
