// Package charts renders the standalone interactive chart artifacts of the
// EDA stage. Every chart is a self-contained HTML file; re-rendering
// overwrites the previous artifact.
package charts

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"edupulse/internal/analytics"
	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// Renderer writes chart artifacts into the visualizations directory.
type Renderer struct {
	dir    string
	logger *slog.Logger
}

// NewRenderer creates a chart renderer targeting the given directory.
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		dir:    dir,
		logger: logger.With(slog.String("component", "charts")),
	}
}

// RenderAll produces the full chart set for the cleaned dataset.
func (r *Renderer) RenderAll(records []domain.CleanedRecord, corr analytics.CorrelationMatrix) error {
	steps := []struct {
		file   string
		render func(string) error
	}{
		{"grade_distribution.html", func(p string) error { return r.GradeHistogram(p, records) }},
		{"lms_vs_grades_scatter.html", func(p string) error { return r.EngagementScatter(p, records) }},
		{"grade_outliers_box.html", func(p string) error { return r.GradeBoxPlot(p, records) }},
		{"grade_spread_pie.html", func(p string) error { return r.LetterGradePie(p, records) }},
		{"semester_trend_analysis.html", func(p string) error { return r.SemesterTrendLine(p, records) }},
		{"department_cohort_comparison.html", func(p string) error { return r.CohortComparisonBar(p, records) }},
		{"correlation_heatmap.html", func(p string) error { return r.CorrelationHeatmap(p, corr) }},
	}

	for _, step := range steps {
		path := filepath.Join(r.dir, step.file)
		if err := step.render(path); err != nil {
			return fmt.Errorf("render %s: %w", step.file, err)
		}
		r.logger.Info("chart rendered", slog.String("path", path))
	}
	return nil
}

// GradeHistogram renders the distribution of final grades by department,
// binned in 5-point buckets.
func (r *Renderer) GradeHistogram(path string, records []domain.CleanedRecord) error {
	const binWidth = 5.0
	bins := int(100/binWidth) + 1

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", int(float64(i)*binWidth))
	}

	byDept := make(map[string][]int)
	for _, dept := range config.Departments {
		byDept[dept] = make([]int, bins)
	}
	for _, rec := range records {
		idx := int(rec.FinalGrade / binWidth)
		if idx >= bins {
			idx = bins - 1
		}
		if _, ok := byDept[rec.Department]; !ok {
			byDept[rec.Department] = make([]int, bins)
		}
		byDept[rec.Department][idx]++
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Distribution of Final Grades by Department"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	bar.SetXAxis(labels)
	for _, dept := range config.Departments {
		counts := byDept[dept]
		data := make([]opts.BarData, len(counts))
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.AddSeries(dept, data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}
	return r.renderTo(path, bar)
}

// EngagementScatter renders LMS hours against final grade with a fitted
// OLS trend line.
func (r *Renderer) EngagementScatter(path string, records []domain.CleanedRecord) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Hours Spent on LMS vs Final Grade"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "LMS Hours", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Final Grade", Type: "value"}),
	)

	byDept := make(map[string][]opts.ScatterData)
	for _, rec := range records {
		byDept[rec.Department] = append(byDept[rec.Department], opts.ScatterData{
			Value:      []interface{}{rec.LMSHours, rec.FinalGrade},
			SymbolSize: 6,
		})
	}
	for _, dept := range config.Departments {
		if points := byDept[dept]; len(points) > 0 {
			scatter.AddSeries(dept, points)
		}
	}

	intercept, slope := analytics.TrendLine(records)
	if len(records) >= 2 {
		minX, maxX := records[0].LMSHours, records[0].LMSHours
		for _, rec := range records {
			if rec.LMSHours < minX {
				minX = rec.LMSHours
			}
			if rec.LMSHours > maxX {
				maxX = rec.LMSHours
			}
		}
		line := charts.NewLine()
		line.AddSeries("OLS trend", []opts.LineData{
			{Value: []interface{}{minX, intercept + slope*minX}},
			{Value: []interface{}{maxX, intercept + slope*maxX}},
		})
		scatter.Overlap(line)
	}
	return r.renderTo(path, scatter)
}

// GradeBoxPlot renders final-grade five-number summaries per department for
// outlier visibility.
func (r *Renderer) GradeBoxPlot(path string, records []domain.CleanedRecord) error {
	byDept := make(map[string][]float64)
	for _, rec := range records {
		byDept[rec.Department] = append(byDept[rec.Department], rec.FinalGrade)
	}

	var axis []string
	var data []opts.BoxPlotData
	for _, dept := range config.Departments {
		grades := byDept[dept]
		if len(grades) == 0 {
			continue
		}
		axis = append(axis, dept)
		data = append(data, opts.BoxPlotData{Value: fiveNumberSummary(grades)})
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Grade Outliers by Department"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	box.SetXAxis(axis).AddSeries("Final Grade", data)
	return r.renderTo(path, box)
}

// LetterGradePie renders the overall letter-grade spread.
func (r *Renderer) LetterGradePie(path string, records []domain.CleanedRecord) error {
	var data []opts.PieData
	for _, gc := range analytics.LetterGradeCounts(records) {
		data = append(data, opts.PieData{Name: gc.Grade, Value: gc.Count})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Overall Grade Spread (Letter Grades)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Letter Grade", data)
	return r.renderTo(path, pie)
}

// SemesterTrendLine renders semester-wise mean final grades per department.
func (r *Renderer) SemesterTrendLine(path string, records []domain.CleanedRecord) error {
	trend := analytics.SemesterTrend(records)

	var semesters []string
	seen := make(map[string]bool)
	for _, p := range trend {
		if !seen[p.Semester] {
			seen[p.Semester] = true
			semesters = append(semesters, p.Semester)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Semester-wise Performance Progression by Department"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	line.SetXAxis(semesters)
	for _, dept := range config.Departments {
		var data []opts.LineData
		for _, sem := range semesters {
			for _, p := range trend {
				if p.Department == dept && p.Semester == sem {
					data = append(data, opts.LineData{Value: p.MeanFinal})
				}
			}
		}
		if len(data) > 0 {
			line.AddSeries(dept, data)
		}
	}
	return r.renderTo(path, line)
}

// CohortComparisonBar renders mean final grade per department grouped by
// admission year.
func (r *Renderer) CohortComparisonBar(path string, records []domain.CleanedRecord) error {
	points := analytics.CohortComparison(records)

	years := make(map[int]bool)
	for _, p := range points {
		years[p.AdmissionYear] = true
	}
	sortedYears := make([]int, 0, len(years))
	for y := range years {
		sortedYears = append(sortedYears, y)
	}
	sort.Ints(sortedYears)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average Final Grade by Department and Admission Year"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	bar.SetXAxis(config.Departments)
	for _, year := range sortedYears {
		var data []opts.BarData
		for _, dept := range config.Departments {
			value := interface{}(nil)
			for _, p := range points {
				if p.Department == dept && p.AdmissionYear == year {
					value = p.MeanFinal
				}
			}
			data = append(data, opts.BarData{Value: value})
		}
		bar.AddSeries(fmt.Sprintf("%d", year), data)
	}
	return r.renderTo(path, bar)
}

// CorrelationHeatmap renders the Pearson matrix of the academic metrics.
func (r *Renderer) CorrelationHeatmap(path string, corr analytics.CorrelationMatrix) error {
	var data []opts.HeatMapData
	for i := range corr.Variables {
		for j := range corr.Variables {
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{i, j, corr.Values[j][i]},
			})
		}
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation Heatmap of Academic Metrics"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: corr.Variables}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: corr.Variables}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
		}),
	)
	heatmap.AddSeries("Pearson r", data)
	return r.renderTo(path, heatmap)
}

type renderable interface {
	Render(w io.Writer) error
}

func (r *Renderer) renderTo(path string, chart renderable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return chart.Render(f)
}

// fiveNumberSummary returns [min, Q1, median, Q3, max].
func fiveNumberSummary(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	quartile := func(q float64) float64 {
		pos := q * float64(len(sorted)-1)
		lo := int(pos)
		if lo >= len(sorted)-1 {
			return sorted[len(sorted)-1]
		}
		frac := pos - float64(lo)
		return sorted[lo]*(1-frac) + sorted[lo+1]*frac
	}

	return []float64{
		sorted[0],
		quartile(0.25),
		quartile(0.5),
		quartile(0.75),
		sorted[len(sorted)-1],
	}
}
