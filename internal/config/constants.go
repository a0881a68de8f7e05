package config

// Departments is the fixed five-department set, in course-ID assignment order.
var Departments = []string{
	"Engineering",
	"Computer Science",
	"Science",
	"Arts",
	"Business",
}

// CoursesPerDepartment is the size of every department's course list.
const CoursesPerDepartment = 4

// CoursesByDepartment maps each department to its fixed course list.
// Course IDs (CRS001..CRS020) are assigned by flattening these lists in
// Departments order; see CourseID.
var CoursesByDepartment = map[string][]string{
	"Engineering": {
		"Engineering Mathematics",
		"Thermodynamics",
		"Digital Electronics",
		"Control Systems",
	},
	"Computer Science": {
		"Data Structures and Algorithms",
		"Database Management Systems",
		"Operating Systems",
		"Machine Learning",
	},
	"Science": {
		"Physics - Mechanics",
		"Organic Chemistry",
		"Cell Biology",
		"Environmental Science",
	},
	"Arts": {
		"History of Modern World",
		"Political Theory",
		"Sociology of Culture",
		"Philosophy of Ethics",
	},
	"Business": {
		"Principles of Management",
		"Financial Accounting",
		"Marketing Management",
		"Business Analytics",
	},
}

// Semesters is the fixed semester set used by the generator.
var Semesters = []string{"Fall 2023", "Spring 2024"}

// Student/course identifier formats.
const (
	StudentIDFormat = "STU%04d"
	CourseIDFormat  = "CRS%03d"
)

// Canonical artifact file names (see Paths for locations).
const (
	DemographicsFile  = "student_demographics.csv"
	EnrollmentFile    = "course_enrollment.csv"
	GradeHistoryFile  = "grade_history.csv"
	CleanedMasterFile = "cleaned_master_dataset.csv"
	SummaryReportFile = "eda_summary_report.txt"
	SummaryWorkbook   = "eda_summary.xlsx"
)
