package domain

import "math"

// Student represents one row of the raw demographics table.
// Age may be missing pre-cleansing; missing numeric fields are NaN.
type Student struct {
	StudentID     string  `json:"student_id" csv:"StudentID" validate:"required"`
	Name          string  `json:"name" csv:"Name" validate:"required"`
	Age           float64 `json:"age" csv:"Age"`
	Gender        string  `json:"gender" csv:"Gender" validate:"oneof=M F Other"`
	Department    string  `json:"department" csv:"Department" validate:"required"`
	AdmissionYear int     `json:"admission_year" csv:"AdmissionYear"`
}

// HasAge reports whether the age field is present.
func (s Student) HasAge() bool {
	return !math.IsNaN(s.Age)
}

// Enrollment represents one row of the raw course enrollment table.
type Enrollment struct {
	EnrollmentID string `json:"enrollment_id" csv:"EnrollmentID" validate:"required,uuid4"`
	StudentID    string `json:"student_id" csv:"StudentID" validate:"required"`
	CourseID     string `json:"course_id" csv:"CourseID" validate:"required"`
	CourseName   string `json:"course_name" csv:"CourseName" validate:"required"`
	Semester     string `json:"semester" csv:"Semester" validate:"required"`
}

// GradeRecord represents one row of the raw grade history table.
// FinalGrade may be missing pre-cleansing; missing numeric fields are NaN.
type GradeRecord struct {
	StudentID      string  `json:"student_id" csv:"StudentID" validate:"required"`
	CourseID       string  `json:"course_id" csv:"CourseID" validate:"required"`
	LMSHours       float64 `json:"lms_hours" csv:"LMS_Hours" validate:"gte=0"`
	AttendanceRate float64 `json:"attendance_rate" csv:"Attendance_Rate" validate:"gte=0,lte=100"`
	MidtermGrade   float64 `json:"midterm_grade" csv:"Midterm_Grade"`
	FinalGrade     float64 `json:"final_grade" csv:"Final_Grade"`
}

// HasFinalGrade reports whether the final grade is present.
func (g GradeRecord) HasFinalGrade() bool {
	return !math.IsNaN(g.FinalGrade)
}
