package validator

import (
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/shc-api/internal/model"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

// FieldError is one failed field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error collects every failed field of one struct.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

var messages = map[string]string{
	"required":    "is required",
	"sex":         "must be M or F",
	"exam_reason": "must be new_hire, job_change, periodic or follow_up",
	"grade":       "must be between 1 and 4",
	"hazard_code": "is not a known hazard code",
}

type validator struct {
	engine *playground.Validate
}

// New builds a validator with the domain tags registered. knownHazard
// backs the hazard_code tag.
func New(knownHazard func(code string) bool) (Validator, error) {
	engine := playground.New()
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]playground.Func{
		"sex": func(fl playground.FieldLevel) bool {
			s := model.Sex(fl.Field().String())
			return s == model.SexMale || s == model.SexFemale
		},
		"exam_reason": func(fl playground.FieldLevel) bool {
			return model.ExamReason(fl.Field().String()).Valid()
		},
		"grade": func(fl playground.FieldLevel) bool {
			return model.ValidGrade(int(fl.Field().Int()))
		},
		"hazard_code": func(fl playground.FieldLevel) bool {
			return knownHazard != nil && knownHazard(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := engine.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}

	return &validator{engine: engine}, nil
}

func (v *validator) Validate(obj interface{}) error {
	err := v.engine.Struct(obj)
	if err == nil {
		return nil
	}
	errs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err
	}

	out := &Error{}
	for _, e := range errs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "failed " + e.Tag()
		}
		out.Fields = append(out.Fields, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
