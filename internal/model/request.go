package model

// CreateCaseRequest is the submitted entry form.
type CreateCaseRequest struct {
	Name       string     `json:"name"`
	WorkerID   string     `json:"worker_id"`
	Department string     `json:"department"`
	Sex        Sex        `json:"sex" validate:"omitempty,sex"`
	BirthDate  string     `json:"birth_date"`
	HireDate   string     `json:"hire_date"`
	Exposure   Exposure   `json:"exposure"`
	HazardCode string     `json:"hazard_code" validate:"omitempty,hazard_code"`
	ExamReason ExamReason `json:"exam_reason" validate:"omitempty,exam_reason"`
	ExamDate   string     `json:"exam_date"`
	// Values maps check item id to the raw entered value.
	Values map[string]string `json:"values"`
	// Overrides holds manual abnormal flags keyed by item id. They are
	// applied after classification.
	Overrides  map[string]bool `json:"overrides"`
	Grade      int             `json:"grade" validate:"omitempty,grade"`
	DoctorNote string          `json:"doctor_note"`
	NurseNote  string          `json:"nurse_note"`
}

// ClassifyRequest asks for the judgement of one value, either against an
// explicit reference expression or against a catalog item.
type ClassifyRequest struct {
	Value      string `json:"value"`
	Reference  string `json:"reference"`
	HazardCode string `json:"hazard_code"`
	ItemID     string `json:"item_id"`
	Sex        Sex    `json:"sex" validate:"omitempty,sex"`
}

// ClassifyResponse is the judgement of a ClassifyRequest.
type ClassifyResponse struct {
	Value      string `json:"value"`
	Reference  string `json:"reference,omitempty"`
	IsAbnormal bool   `json:"is_abnormal"`
}
