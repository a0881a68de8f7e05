package analytics

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"edupulse/internal/config"
	"edupulse/pkg/contracts/domain"
)

// TrendPoint is the mean final grade for one (semester, department) group.
type TrendPoint struct {
	Semester   string  `json:"semester"`
	Department string  `json:"department"`
	MeanFinal  float64 `json:"mean_final"`
}

// SemesterTrend computes per-semester mean final grades by department,
// ordered chronologically then by the fixed department order.
func SemesterTrend(records []domain.CleanedRecord) []TrendPoint {
	type key struct{ semester, department string }
	grouped := make(map[key][]float64)
	for _, r := range records {
		grouped[key{r.Semester, r.Department}] = append(grouped[key{r.Semester, r.Department}], r.FinalGrade)
	}

	out := make([]TrendPoint, 0, len(grouped))
	for k, finals := range grouped {
		out = append(out, TrendPoint{
			Semester:   k.semester,
			Department: k.department,
			MeanFinal:  stat.Mean(finals, nil),
		})
	}

	deptOrder := make(map[string]int, len(config.Departments))
	for i, d := range config.Departments {
		deptOrder[d] = i
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := semesterSortKey(out[i].Semester), semesterSortKey(out[j].Semester)
		if si != sj {
			return si < sj
		}
		return deptOrder[out[i].Department] < deptOrder[out[j].Department]
	})
	return out
}

// CohortPoint is the mean final grade for one (department, admission year)
// cohort.
type CohortPoint struct {
	Department    string  `json:"department"`
	AdmissionYear int     `json:"admission_year"`
	MeanFinal     float64 `json:"mean_final"`
}

// CohortComparison computes mean final grades per department and admission
// year, ordered by year then department.
func CohortComparison(records []domain.CleanedRecord) []CohortPoint {
	type key struct {
		department string
		year       int
	}
	grouped := make(map[key][]float64)
	for _, r := range records {
		grouped[key{r.Department, r.AdmissionYear}] = append(grouped[key{r.Department, r.AdmissionYear}], r.FinalGrade)
	}

	out := make([]CohortPoint, 0, len(grouped))
	for k, finals := range grouped {
		out = append(out, CohortPoint{
			Department:    k.department,
			AdmissionYear: k.year,
			MeanFinal:     stat.Mean(finals, nil),
		})
	}

	deptOrder := make(map[string]int, len(config.Departments))
	for i, d := range config.Departments {
		deptOrder[d] = i
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AdmissionYear != out[j].AdmissionYear {
			return out[i].AdmissionYear < out[j].AdmissionYear
		}
		return deptOrder[out[i].Department] < deptOrder[out[j].Department]
	})
	return out
}

// Heatmap is a binned density grid of attendance (x) against final grade (y).
type Heatmap struct {
	XBuckets []string `json:"x_buckets"`
	YBuckets []string `json:"y_buckets"`
	Counts   [][]int  `json:"counts"`
}

// AttendanceGradeHeatmap bins the records into a bins x bins grid over the
// 0-100 range on both axes.
func AttendanceGradeHeatmap(records []domain.CleanedRecord, bins int) Heatmap {
	if bins <= 0 {
		bins = 12
	}
	width := 100.0 / float64(bins)

	counts := make([][]int, bins)
	for i := range counts {
		counts[i] = make([]int, bins)
	}
	for _, r := range records {
		x := bucketIndex(r.AttendanceRate, width, bins)
		y := bucketIndex(r.FinalGrade, width, bins)
		counts[y][x]++
	}

	labels := make([]string, bins)
	for i := 0; i < bins; i++ {
		lo := int(float64(i) * width)
		hi := int(float64(i+1) * width)
		labels[i] = strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
	}
	return Heatmap{XBuckets: labels, YBuckets: labels, Counts: counts}
}

func bucketIndex(v, width float64, bins int) int {
	idx := int(v / width)
	if idx >= bins {
		idx = bins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// JourneyFlow is the Sankey view of the student journey: counts flowing
// Department -> Semester -> LetterGrade.
type JourneyFlow struct {
	Nodes []string      `json:"nodes"`
	Links []JourneyLink `json:"links"`
}

// JourneyLink is one weighted edge of the flow diagram.
type JourneyLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// StudentJourney counts record transitions between department, semester and
// letter-grade bands. Node order is departments, then semesters, then grades.
func StudentJourney(records []domain.CleanedRecord) JourneyFlow {
	deptSem := make(map[[2]string]int)
	semGrade := make(map[[2]string]int)
	seenDept := make(map[string]bool)
	seenSem := make(map[string]bool)
	seenGrade := make(map[string]bool)

	for _, r := range records {
		deptSem[[2]string{r.Department, r.Semester}]++
		semGrade[[2]string{r.Semester, r.LetterGrade}]++
		seenDept[r.Department] = true
		seenSem[r.Semester] = true
		seenGrade[r.LetterGrade] = true
	}

	var nodes []string
	for _, d := range config.Departments {
		if seenDept[d] {
			nodes = append(nodes, d)
		}
	}
	semesters := make([]string, 0, len(seenSem))
	for s := range seenSem {
		semesters = append(semesters, s)
	}
	sort.Slice(semesters, func(i, j int) bool {
		return semesterSortKey(semesters[i]) < semesterSortKey(semesters[j])
	})
	nodes = append(nodes, semesters...)
	for _, g := range domain.LetterGrades {
		if seenGrade[g] {
			nodes = append(nodes, g)
		}
	}

	var links []JourneyLink
	for _, d := range config.Departments {
		for _, s := range semesters {
			if n := deptSem[[2]string{d, s}]; n > 0 {
				links = append(links, JourneyLink{Source: d, Target: s, Count: n})
			}
		}
	}
	for _, s := range semesters {
		for _, g := range domain.LetterGrades {
			if n := semGrade[[2]string{s, g}]; n > 0 {
				links = append(links, JourneyLink{Source: s, Target: g, Count: n})
			}
		}
	}
	return JourneyFlow{Nodes: nodes, Links: links}
}

// semesterSortKey orders "Season YYYY" labels chronologically: Spring
// precedes Summer precedes Fall within a year.
func semesterSortKey(semester string) int {
	parts := strings.Fields(semester)
	if len(parts) != 2 {
		return 0
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	season := 3
	switch parts[0] {
	case "Spring":
		season = 1
	case "Summer":
		season = 2
	}
	return year*10 + season
}
