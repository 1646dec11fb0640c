package model

// HazardSummary is the grade distribution of the cases of one hazard.
type HazardSummary struct {
	HazardCode string `json:"hazard_code"`
	HazardName string `json:"hazard_name"`
	Total      int    `json:"total"`
	Grade1     int    `json:"grade_1"`
	Grade2     int    `json:"grade_2"`
	Grade3     int    `json:"grade_3"`
	Grade4     int    `json:"grade_4"`
}

// Add counts one case of the given grade.
func (s *HazardSummary) Add(grade int) {
	s.Total++
	switch grade {
	case 1:
		s.Grade1++
	case 2:
		s.Grade2++
	case 3:
		s.Grade3++
	case 4:
		s.Grade4++
	}
}

// ByGrade returns the four grade counts in grade order.
func (s HazardSummary) ByGrade() [4]int {
	return [4]int{s.Grade1, s.Grade2, s.Grade3, s.Grade4}
}

// CaseStats are the headline numbers of the dashboard.
type CaseStats struct {
	TotalCases    int    `json:"total_cases"`
	AbnormalCases int    `json:"abnormal_cases"`
	ByGrade       [4]int `json:"by_grade"`
}
