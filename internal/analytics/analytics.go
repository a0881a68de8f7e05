// Package analytics computes the descriptive statistics behind the EDA
// report and the dashboard: cohort aggregates, Pearson correlations,
// outliers and trend lines over the cleaned dataset.
package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// CohortStats holds per-department descriptive statistics for the final
// grade and the attendance rate.
type CohortStats struct {
	Department       string  `json:"department"`
	Count            int     `json:"count"`
	MeanFinal        float64 `json:"mean_final"`
	MedianFinal      float64 `json:"median_final"`
	StdDevFinal      float64 `json:"std_dev_final"`
	MeanAttendance   float64 `json:"mean_attendance"`
	MedianAttendance float64 `json:"median_attendance"`
	StdDevAttendance float64 `json:"std_dev_attendance"`
}

// CohortStatistics computes grouped statistics per department, in the fixed
// department order with unrecognized departments appended alphabetically.
// Departments with no rows are omitted.
func CohortStatistics(records []domain.CleanedRecord) []CohortStats {
	finals := make(map[string][]float64)
	attendance := make(map[string][]float64)
	for _, r := range records {
		finals[r.Department] = append(finals[r.Department], r.FinalGrade)
		attendance[r.Department] = append(attendance[r.Department], r.AttendanceRate)
	}

	// Known departments first, in catalog order, then anything else the
	// input carries so that cohort counts always sum to the row count.
	order := append([]string{}, config.Departments...)
	known := make(map[string]bool, len(order))
	for _, dept := range order {
		known[dept] = true
	}
	var extra []string
	for dept := range finals {
		if !known[dept] {
			extra = append(extra, dept)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var out []CohortStats
	for _, dept := range order {
		f := finals[dept]
		if len(f) == 0 {
			continue
		}
		a := attendance[dept]
		out = append(out, CohortStats{
			Department:       dept,
			Count:            len(f),
			MeanFinal:        stat.Mean(f, nil),
			MedianFinal:      median(f),
			StdDevFinal:      sampleStdDev(f),
			MeanAttendance:   stat.Mean(a, nil),
			MedianAttendance: median(a),
			StdDevAttendance: sampleStdDev(a),
		})
	}
	return out
}

// CorrelationVariables is the fixed variable order of the Pearson matrix.
var CorrelationVariables = []string{"LMS_Hours", "Attendance_Rate", "Midterm_Grade", "Final_Grade"}

// CorrelationMatrix is a symmetric Pearson correlation matrix over the
// quantitative variables of the cleaned dataset.
type CorrelationMatrix struct {
	Variables []string    `json:"variables"`
	Values    [][]float64 `json:"values"`
}

// At returns the coefficient for a pair of variables by name.
func (m CorrelationMatrix) At(a, b string) float64 {
	ai, bi := -1, -1
	for i, v := range m.Variables {
		if v == a {
			ai = i
		}
		if v == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return math.NaN()
	}
	return m.Values[ai][bi]
}

// Correlations computes the Pearson correlation matrix over the whole
// population.
func Correlations(records []domain.CleanedRecord) CorrelationMatrix {
	columns := extractColumns(records)

	n := len(CorrelationVariables)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		for j := range values[i] {
			if i == j {
				values[i][j] = 1
				continue
			}
			values[i][j] = stat.Correlation(columns[i], columns[j], nil)
		}
	}
	return CorrelationMatrix{Variables: CorrelationVariables, Values: values}
}

// DepartmentEngagementCorrelation computes the LMS-hours-vs-final-grade
// Pearson coefficient for each department cohort.
func DepartmentEngagementCorrelation(records []domain.CleanedRecord) map[string]float64 {
	lms := make(map[string][]float64)
	finals := make(map[string][]float64)
	for _, r := range records {
		lms[r.Department] = append(lms[r.Department], r.LMSHours)
		finals[r.Department] = append(finals[r.Department], r.FinalGrade)
	}

	out := make(map[string]float64, len(lms))
	for dept := range lms {
		if len(lms[dept]) < 2 {
			continue
		}
		out[dept] = stat.Correlation(lms[dept], finals[dept], nil)
	}
	return out
}

// Outliers returns the records whose final grade lies more than stdDevs
// standard deviations from the population mean.
func Outliers(records []domain.CleanedRecord, stdDevs float64) []domain.CleanedRecord {
	finals := make([]float64, 0, len(records))
	for _, r := range records {
		finals = append(finals, r.FinalGrade)
	}
	if len(finals) < 2 {
		return nil
	}

	mean := stat.Mean(finals, nil)
	sd := sampleStdDev(finals)

	var out []domain.CleanedRecord
	for _, r := range records {
		if math.Abs(r.FinalGrade-mean) > stdDevs*sd {
			out = append(out, r)
		}
	}
	return out
}

// AtRisk reports whether a student-course record trips any of the
// early-warning conditions: a midterm-to-final drop beyond the configured
// limit, attendance below the floor, or a final grade below the floor.
// All comparisons are strict.
func AtRisk(r domain.CleanedRecord, rules config.Rules) bool {
	return r.GradeDrop() > rules.GradeDropLimit ||
		r.AttendanceRate < rules.AttendanceFloor ||
		r.FinalGrade < rules.FinalGradeFloor
}

// AtRiskRecords filters the dataset down to the at-risk rows.
func AtRiskRecords(records []domain.CleanedRecord, rules config.Rules) []domain.CleanedRecord {
	var out []domain.CleanedRecord
	for _, r := range records {
		if AtRisk(r, rules) {
			out = append(out, r)
		}
	}
	return out
}

// TrendLine fits final grade against LMS hours by ordinary least squares.
func TrendLine(records []domain.CleanedRecord) (intercept, slope float64) {
	lms := make([]float64, 0, len(records))
	finals := make([]float64, 0, len(records))
	for _, r := range records {
		lms = append(lms, r.LMSHours)
		finals = append(finals, r.FinalGrade)
	}
	if len(lms) < 2 {
		return math.NaN(), math.NaN()
	}
	return stat.LinearRegression(lms, finals, nil, false)
}

// LetterGradeCounts tallies letter grades in band order (A through F).
func LetterGradeCounts(records []domain.CleanedRecord) []GradeCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.LetterGrade]++
	}

	out := make([]GradeCount, 0, len(domain.LetterGrades))
	for _, grade := range domain.LetterGrades {
		if counts[grade] > 0 {
			out = append(out, GradeCount{Grade: grade, Count: counts[grade]})
		}
	}
	return out
}

// GradeCount is a letter-grade tally.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// extractColumns pulls the correlation variables into parallel slices.
func extractColumns(records []domain.CleanedRecord) [][]float64 {
	columns := make([][]float64, len(CorrelationVariables))
	for i := range columns {
		columns[i] = make([]float64, 0, len(records))
	}
	for _, r := range records {
		columns[0] = append(columns[0], r.LMSHours)
		columns[1] = append(columns[1], r.AttendanceRate)
		columns[2] = append(columns[2], r.MidtermGrade)
		columns[3] = append(columns[3], r.FinalGrade)
	}
	return columns
}

// median matches the conventional midpoint definition rather than an
// interpolated quantile, so it agrees with spreadsheet medians.
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

// sampleStdDev is the n-1 normalized standard deviation; a single-element
// sample has no spread and reports zero rather than NaN.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
