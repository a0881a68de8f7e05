package domain

// OutcomeLabel is the derived categorical label assigned during cleansing.
// The three labels are mutually exclusive and every cleaned row carries one.
type OutcomeLabel string

const (
	OutcomeDropout    OutcomeLabel = "Dropout"
	OutcomeMissedExam OutcomeLabel = "Missed Exam"
	OutcomeNormal     OutcomeLabel = "Normal"
)

// Letter grade band lower bounds (inclusive).
const (
	letterABound = 90.0
	letterBBound = 80.0
	letterCBound = 70.0
	letterDBound = 60.0
)

// LetterGrade maps a 0-100 score to its letter band.
func LetterGrade(score float64) string {
	switch {
	case score >= letterABound:
		return "A"
	case score >= letterBBound:
		return "B"
	case score >= letterCBound:
		return "C"
	case score >= letterDBound:
		return "D"
	default:
		return "F"
	}
}

// LetterGrades lists the bands in descending order of achievement.
var LetterGrades = []string{"A", "B", "C", "D", "F"}

// CleanedRecord is one row of the unified dataset: demographics, enrollment
// and grades merged per student-course pair, with all missing values resolved.
type CleanedRecord struct {
	EnrollmentID  string  `json:"enrollment_id" csv:"EnrollmentID"`
	StudentID     string  `json:"student_id" csv:"StudentID"`
	CourseID      string  `json:"course_id" csv:"CourseID"`
	CourseName    string  `json:"course_name" csv:"CourseName"`
	Semester      string  `json:"semester" csv:"Semester"`
	Name          string  `json:"name" csv:"Name"`
	Age           float64 `json:"age" csv:"Age"`
	Gender        string  `json:"gender" csv:"Gender"`
	Department    string  `json:"department" csv:"Department"`
	AdmissionYear int     `json:"admission_year" csv:"AdmissionYear"`

	LMSHours       float64 `json:"lms_hours" csv:"LMS_Hours"`
	AttendanceRate float64 `json:"attendance_rate" csv:"Attendance_Rate"`
	MidtermGrade   float64 `json:"midterm_grade" csv:"Midterm_Grade"`
	FinalGrade     float64 `json:"final_grade" csv:"Final_Grade"`

	LetterGrade string       `json:"letter_grade" csv:"Letter_Grade"`
	Outcome     OutcomeLabel `json:"outcome" csv:"Outcome"`
}

// GradeDrop returns the midterm-to-final score delta.
func (r CleanedRecord) GradeDrop() float64 {
	return r.MidtermGrade - r.FinalGrade
}
