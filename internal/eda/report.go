// Package eda turns the cleaned master dataset into a summary report, an
// Excel workbook and a set of interactive chart artifacts.
package eda

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"edupulse/internal/analytics"
	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// Report bundles every analytic result the EDA stage publishes.
type Report struct {
	GeneratedAt time.Time
	RecordCount int
	Students    int

	Cohorts          []analytics.CohortStats
	Correlations     analytics.CorrelationMatrix
	EngagementByDept map[string]float64
	LetterGrades     []analytics.GradeCount
	AtRisk           []domain.CleanedRecord
	Outliers         []domain.CleanedRecord
	OutcomeCounts    map[domain.OutcomeLabel]int

	TrendIntercept float64
	TrendSlope     float64
}

// Build computes the full report from the cleaned dataset.
func Build(records []domain.CleanedRecord, rules config.Rules) *Report {
	students := make(map[string]struct{})
	outcomes := make(map[domain.OutcomeLabel]int)
	for _, r := range records {
		students[r.StudentID] = struct{}{}
		outcomes[r.Outcome]++
	}

	intercept, slope := analytics.TrendLine(records)

	return &Report{
		GeneratedAt:      time.Now().UTC(),
		RecordCount:      len(records),
		Students:         len(students),
		Cohorts:          analytics.CohortStatistics(records),
		Correlations:     analytics.Correlations(records),
		EngagementByDept: analytics.DepartmentEngagementCorrelation(records),
		LetterGrades:     analytics.LetterGradeCounts(records),
		AtRisk:           analytics.AtRiskRecords(records, rules),
		Outliers:         analytics.Outliers(records, rules.OutlierStdDevs),
		OutcomeCounts:    outcomes,
		TrendIntercept:   intercept,
		TrendSlope:       slope,
	}
}

// RenderText renders the plain-text summary report.
func (r *Report) RenderText() string {
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", len(title)))
		b.WriteString("\n")
	}

	b.WriteString("STUDENT PERFORMANCE SUMMARY REPORT\n")
	b.WriteString("==================================\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Records:   %d (students: %d)\n", r.RecordCount, r.Students)

	section("Outcome Breakdown")
	for _, label := range []domain.OutcomeLabel{domain.OutcomeNormal, domain.OutcomeDropout, domain.OutcomeMissedExam} {
		fmt.Fprintf(&b, "%-12s %d\n", label, r.OutcomeCounts[label])
	}

	section("Cohort Statistics by Department")
	fmt.Fprintf(&b, "%-18s %6s %10s %10s %10s %12s\n",
		"Department", "N", "MeanFinal", "MedFinal", "StdFinal", "MeanAttend")
	for _, c := range r.Cohorts {
		fmt.Fprintf(&b, "%-18s %6d %10.2f %10.2f %10.2f %12.2f\n",
			c.Department, c.Count, c.MeanFinal, c.MedianFinal, c.StdDevFinal, c.MeanAttendance)
	}

	section("Correlation Matrix (Pearson)")
	fmt.Fprintf(&b, "%-18s", "")
	for _, v := range r.Correlations.Variables {
		fmt.Fprintf(&b, "%16s", v)
	}
	b.WriteString("\n")
	for i, v := range r.Correlations.Variables {
		fmt.Fprintf(&b, "%-18s", v)
		for j := range r.Correlations.Variables {
			fmt.Fprintf(&b, "%16.3f", r.Correlations.Values[i][j])
		}
		b.WriteString("\n")
	}

	section("LMS Engagement vs Final Grade by Department")
	depts := make([]string, 0, len(r.EngagementByDept))
	for d := range r.EngagementByDept {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	for _, d := range depts {
		fmt.Fprintf(&b, "%-18s r = %.3f\n", d, r.EngagementByDept[d])
	}
	fmt.Fprintf(&b, "\nOLS fit: Final_Grade = %.3f + %.3f * LMS_Hours\n",
		r.TrendIntercept, r.TrendSlope)

	section("Letter Grade Spread")
	for _, gc := range r.LetterGrades {
		fmt.Fprintf(&b, "%-4s %d\n", gc.Grade, gc.Count)
	}

	section("At-Risk Students")
	fmt.Fprintf(&b, "%d enrollment records flagged\n", len(r.AtRisk))
	for _, rec := range r.AtRisk {
		fmt.Fprintf(&b, "%s %s final=%.1f midterm=%.1f attendance=%.1f\n",
			rec.StudentID, rec.CourseID, rec.FinalGrade, rec.MidtermGrade, rec.AttendanceRate)
	}

	section("Grade Outliers")
	fmt.Fprintf(&b, "%d records outside the outlier window\n", len(r.Outliers))
	for _, rec := range r.Outliers {
		fmt.Fprintf(&b, "%s %s final=%.1f\n", rec.StudentID, rec.CourseID, rec.FinalGrade)
	}

	return b.String()
}
