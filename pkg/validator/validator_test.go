package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shc-api/internal/model"
)

func TestValidate(t *testing.T) {
	v, err := New(func(code string) bool { return code == "05" })
	require.NoError(t, err)

	assert.NoError(t, v.Validate(&model.CreateCaseRequest{Name: "王小明"}))
	assert.NoError(t, v.Validate(&model.CreateCaseRequest{
		Sex:        model.SexFemale,
		HazardCode: "05",
		ExamReason: model.ReasonFollowUp,
		Grade:      4,
	}))

	err = v.Validate(&model.CreateCaseRequest{
		Sex:        "X",
		HazardCode: "77",
		ExamReason: "yearly",
		Grade:      5,
	})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, messages["sex"], fields["sex"])
	assert.Equal(t, messages["hazard_code"], fields["hazard_code"])
	assert.Equal(t, messages["exam_reason"], fields["exam_reason"])
	assert.Equal(t, messages["grade"], fields["grade"])
}

func TestValidate_NoHazardLookup(t *testing.T) {
	v, err := New(nil)
	require.NoError(t, err)
	assert.Error(t, v.Validate(&model.CreateCaseRequest{HazardCode: "05"}))
}
