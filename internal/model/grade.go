package model

const (
	GradeMin = 1
	GradeMax = 4
)

// GradeDefinition describes one health-management grade.
type GradeDefinition struct {
	Grade       int      `json:"grade"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Color       string   `json:"color"`
}

// ValidGrade reports whether g is one of the four management grades.
func ValidGrade(g int) bool {
	return g >= GradeMin && g <= GradeMax
}
