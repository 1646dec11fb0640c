package model

import "strings"

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts the spellings found in imported sheets. Anything it does
// not recognise, including an empty cell, is male.
func ParseSex(raw string) Sex {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "F", "FEMALE", "女":
		return SexFemale
	default:
		return SexMale
	}
}

// Label is the form label for the sex.
func (s Sex) Label() string {
	if s == SexFemale {
		return "女"
	}
	return "男"
}

type ExamReason string

const (
	ReasonNewHire   ExamReason = "new_hire"
	ReasonJobChange ExamReason = "job_change"
	ReasonPeriodic  ExamReason = "periodic"
	ReasonFollowUp  ExamReason = "follow_up"
)

// ExamReasons lists the reasons in form order.
var ExamReasons = []ExamReason{ReasonNewHire, ReasonJobChange, ReasonPeriodic, ReasonFollowUp}

var reasonLabels = map[ExamReason]string{
	ReasonNewHire:   "新進員工",
	ReasonJobChange: "變更作業",
	ReasonPeriodic:  "定期檢查",
	ReasonFollowUp:  "追蹤檢查",
}

// Label is the form label for the reason.
func (r ExamReason) Label() string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}

// IsEntry reports whether the exam is a pre-placement exam. Job changes
// place the worker into a new hazard, so they take the entry items too.
func (r ExamReason) IsEntry() bool {
	return r == ReasonNewHire || r == ReasonJobChange
}

// Valid reports whether r is one of the four known reasons.
func (r ExamReason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// ParseExamReason accepts either the code or the Chinese label. Unknown
// values fall back to a periodic exam.
func ParseExamReason(raw string) ExamReason {
	raw = strings.TrimSpace(raw)
	for reason, label := range reasonLabels {
		if raw == string(reason) || raw == label {
			return reason
		}
	}
	return ReasonPeriodic
}

// ItemResult is the captured value of one check item.
type ItemResult struct {
	Value      string `json:"value"`
	IsAbnormal bool   `json:"is_abnormal"`
	// Manual is set when the last write to IsAbnormal came from the clinician.
	Manual bool `json:"manual,omitempty"`
}

// Exposure is the occupational exposure history of the subject.
type Exposure struct {
	PastJob      string  `json:"past_job,omitempty"`
	PastFrom     string  `json:"past_from,omitempty"`
	PastTo       string  `json:"past_to,omitempty"`
	PastYears    string  `json:"past_years,omitempty"`
	CurrentJob   string  `json:"current_job,omitempty"`
	CurrentFrom  string  `json:"current_from,omitempty"`
	CurrentYears string  `json:"current_years,omitempty"`
	DailyHours   float64 `json:"daily_hours,omitempty"`
}

// ExaminationCase is one completed special health check.
type ExaminationCase struct {
	Base
	Name       string                `json:"name"`
	WorkerID   string                `json:"worker_id,omitempty"`
	Department string                `json:"department,omitempty"`
	Sex        Sex                   `json:"sex"`
	BirthDate  string                `json:"birth_date,omitempty"`
	HireDate   string                `json:"hire_date,omitempty"`
	Exposure   Exposure              `json:"exposure"`
	HazardCode string                `json:"hazard_code"`
	ExamReason ExamReason            `json:"exam_reason"`
	ExamDate   string                `json:"exam_date,omitempty"`
	Results    map[string]ItemResult `json:"results"`
	Grade      int                   `json:"grade"`
	DoctorNote string                `json:"doctor_note,omitempty"`
	NurseNote  string                `json:"nurse_note,omitempty"`
}

// AbnormalCount returns how many results are flagged abnormal.
func (c *ExaminationCase) AbnormalCount() int {
	n := 0
	for _, r := range c.Results {
		if r.IsAbnormal {
			n++
		}
	}
	return n
}

// CaseFilters narrows a case listing.
type CaseFilters struct {
	HazardCode string
	SearchTerm string
}
