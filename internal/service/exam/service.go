// Package exam turns submitted entry forms into judged examination cases.
package exam

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/validator"
)

// CaseAdder stores a finished case.
type CaseAdder interface {
	Add(ctx context.Context, c *model.ExaminationCase) error
}

// Evaluation is the judged form without storing anything.
type Evaluation struct {
	HazardCode string                      `json:"hazard_code"`
	ExamReason model.ExamReason            `json:"exam_reason"`
	Sex        model.Sex                   `json:"sex"`
	Items      []model.CheckItem           `json:"items"`
	Results    map[string]model.ItemResult `json:"results"`
	Abnormal   int                         `json:"abnormal"`
}

type Service struct {
	reg      *catalog.Registry
	cases    CaseAdder
	validate validator.Validator
}

func NewService(reg *catalog.Registry, cases CaseAdder, validate validator.Validator) *Service {
	return &Service{
		reg:      reg,
		cases:    cases,
		validate: validate,
	}
}

// Evaluate judges the submitted values the way the entry form does while
// the clinician types.
func (s *Service) Evaluate(req *model.CreateCaseRequest) (*Evaluation, error) {
	d, err := s.draft(req)
	if err != nil {
		return nil, err
	}
	results := d.Results()

	abnormal := 0
	for _, r := range results {
		if r.IsAbnormal {
			abnormal++
		}
	}
	return &Evaluation{
		HazardCode: d.Hazard(),
		ExamReason: d.Reason(),
		Sex:        d.Sex(),
		Items:      d.Items(),
		Results:    results,
		Abnormal:   abnormal,
	}, nil
}

// Submit judges the form and stores the resulting case.
func (s *Service) Submit(ctx context.Context, req *model.CreateCaseRequest) (*model.ExaminationCase, error) {
	d, err := s.draft(req)
	if err != nil {
		return nil, err
	}

	grade := req.Grade
	if grade == 0 {
		grade = model.GradeMin
	}

	c := &model.ExaminationCase{
		Name:       strings.TrimSpace(req.Name),
		WorkerID:   strings.TrimSpace(req.WorkerID),
		Department: strings.TrimSpace(req.Department),
		Sex:        d.Sex(),
		BirthDate:  req.BirthDate,
		HireDate:   req.HireDate,
		Exposure:   req.Exposure,
		HazardCode: d.Hazard(),
		ExamReason: d.Reason(),
		ExamDate:   req.ExamDate,
		Results:    d.Results(),
		Grade:      grade,
		DoctorNote: req.DoctorNote,
		NurseNote:  req.NurseNote,
	}

	if err := s.cases.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to submit case: %w", err)
	}
	return c, nil
}

func (s *Service) draft(req *model.CreateCaseRequest) (*Draft, error) {
	if req.HazardCode != "" {
		req.HazardCode = catalog.NormalizeCode(req.HazardCode)
	}
	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	hazard := req.HazardCode
	if hazard == "" {
		hazard = s.reg.FirstCode()
	}
	reason := req.ExamReason
	if reason == "" {
		reason = model.ReasonPeriodic
	}
	sex := req.Sex
	if sex == "" {
		sex = model.SexMale
	}

	d := NewDraft(s.reg, hazard, reason, sex)

	// Form order puts the spirometry inputs before the lung pattern, so an
	// explicitly entered pattern wins over the inferred one.
	for _, it := range d.Items() {
		if v := req.Values[it.ID]; strings.TrimSpace(v) != "" {
			d.SetValue(it.ID, v)
		}
	}
	for id, flag := range req.Overrides {
		d.SetAbnormal(id, flag)
	}
	return d, nil
}
