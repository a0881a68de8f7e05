package config

import "fmt"

// Course is a catalog entry: a course ID, its name, and the owning department.
type Course struct {
	ID         string
	Name       string
	Department string
}

// Catalog returns the full ordered course catalog. IDs are deterministic:
// CRS001..CRS020 assigned by flattening CoursesByDepartment in Departments
// order.
func Catalog() []Course {
	catalog := make([]Course, 0, len(Departments)*CoursesPerDepartment)
	id := 1
	for _, dept := range Departments {
		for _, name := range CoursesByDepartment[dept] {
			catalog = append(catalog, Course{
				ID:         fmt.Sprintf(CourseIDFormat, id),
				Name:       name,
				Department: dept,
			})
			id++
		}
	}
	return catalog
}

// DepartmentCatalog returns the ordered catalog entries for one department.
func DepartmentCatalog(department string) []Course {
	var courses []Course
	for _, c := range Catalog() {
		if c.Department == department {
			courses = append(courses, c)
		}
	}
	return courses
}
