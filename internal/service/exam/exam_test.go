package exam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/validator"
)

func TestInferPattern(t *testing.T) {
	tests := []struct {
		ratio, fvc float64
		want       string
	}{
		{65, 85, catalog.PatternObstructive},
		{75, 70, catalog.PatternRestrictive},
		{60, 70, catalog.PatternMixed},
		{80, 90, catalog.PatternNormal},
		{70, 80, catalog.PatternNormal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferPattern(tt.fvc, tt.ratio), "ratio %v fvc %v", tt.ratio, tt.fvc)
	}
}

func TestApplyPulmonaryPattern(t *testing.T) {
	base := func() map[string]model.ItemResult {
		return map[string]model.ItemResult{
			catalog.ItemFVC:         {Value: "70"},
			catalog.ItemFEV1FVC:     {Value: "60"},
			catalog.ItemLungPattern: {},
		}
	}

	results := base()
	require.True(t, ApplyPulmonaryPattern(results, catalog.ItemFEV1FVC, model.SexMale))
	assert.Equal(t, model.ItemResult{Value: catalog.PatternMixed, IsAbnormal: true}, results[catalog.ItemLungPattern])

	results = base()
	assert.False(t, ApplyPulmonaryPattern(results, "hb", model.SexMale))
	assert.Empty(t, results[catalog.ItemLungPattern].Value)

	results = base()
	delete(results, catalog.ItemLungPattern)
	assert.False(t, ApplyPulmonaryPattern(results, catalog.ItemFVC, model.SexMale))
	assert.NotContains(t, results, catalog.ItemLungPattern)

	results = base()
	results[catalog.ItemFEV1FVC] = model.ItemResult{Value: "n/a"}
	assert.False(t, ApplyPulmonaryPattern(results, catalog.ItemFVC, model.SexMale))

	results = base()
	results[catalog.ItemFVC] = model.ItemResult{Value: "90"}
	results[catalog.ItemFEV1FVC] = model.ItemResult{Value: "80"}
	require.True(t, ApplyPulmonaryPattern(results, catalog.ItemFEV1, model.SexMale))
	assert.Equal(t, model.ItemResult{Value: catalog.PatternNormal}, results[catalog.ItemLungPattern])
}

func newRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.New()
	require.NoError(t, err)
	return reg
}

func TestDraft_SetValue(t *testing.T) {
	d := NewDraft(newRegistry(t), "23", model.ReasonPeriodic, model.SexMale)

	assert.True(t, d.SetValue("bp_sys", "150"))
	assert.True(t, d.Results()["bp_sys"].IsAbnormal)
	assert.False(t, d.SetValue("pb_blood", "50"))

	d.SetValue(catalog.ItemFVC, "85")
	assert.Empty(t, d.Results()[catalog.ItemLungPattern].Value)
	d.SetValue(catalog.ItemFEV1FVC, "65")
	assert.Equal(t, catalog.PatternObstructive, d.Results()[catalog.ItemLungPattern].Value)
	assert.True(t, d.Results()[catalog.ItemLungPattern].IsAbnormal)
}

func TestDraft_ManualOverride(t *testing.T) {
	d := NewDraft(newRegistry(t), "23", model.ReasonPeriodic, model.SexMale)
	d.SetValue(catalog.ItemFVC, "70")
	d.SetValue(catalog.ItemFEV1FVC, "60")
	require.True(t, d.Results()[catalog.ItemLungPattern].IsAbnormal)

	require.True(t, d.SetAbnormal(catalog.ItemLungPattern, false))
	d.SetValue("bp_sys", "120")
	d.setSex(model.SexFemale)
	assert.False(t, d.Results()[catalog.ItemLungPattern].IsAbnormal)
	assert.True(t, d.Results()[catalog.ItemLungPattern].Manual)

	// editing a trigger recomputes the pattern and drops the override
	d.SetValue(catalog.ItemFEV1, "50")
	assert.True(t, d.Results()[catalog.ItemLungPattern].IsAbnormal)
	assert.False(t, d.Results()[catalog.ItemLungPattern].Manual)
}

func TestDraft_SetSexReclassifies(t *testing.T) {
	d := NewDraft(newRegistry(t), "05", model.ReasonPeriodic, model.SexMale)
	d.SetValue("pb_blood", "35")
	assert.False(t, d.Results()["pb_blood"].IsAbnormal)

	d.setSex(model.SexFemale)
	assert.True(t, d.Results()["pb_blood"].IsAbnormal)
}

func TestDraft_SetReasonAndHazard(t *testing.T) {
	d := NewDraft(newRegistry(t), "04", model.ReasonNewHire, model.SexMale)
	assert.True(t, d.Has("bone_xray"))
	d.SetValue("bp_sys", "150")

	d.setReason(model.ReasonPeriodic)
	assert.False(t, d.Has("bone_xray"))
	assert.True(t, d.Has("bone_symptom"))
	assert.Equal(t, "150", d.Results()["bp_sys"].Value)

	d.setHazard("02")
	assert.False(t, d.Has(catalog.ItemFVC))
	assert.True(t, d.Has("hearing_l_avg"))
	assert.True(t, d.Results()["bp_sys"].IsAbnormal)
}

type captureAdder struct {
	added []*model.ExaminationCase
	err   error
}

func (c *captureAdder) Add(_ context.Context, ec *model.ExaminationCase) error {
	if c.err != nil {
		return c.err
	}
	c.added = append(c.added, ec)
	return nil
}

func newService(t *testing.T, adder CaseAdder) *Service {
	t.Helper()
	reg := newRegistry(t)
	v, err := validator.New(func(code string) bool {
		_, ok := reg.Panel(code)
		return ok
	})
	require.NoError(t, err)
	return NewService(reg, adder, v)
}

func TestService_Submit(t *testing.T) {
	adder := &captureAdder{}
	svc := newService(t, adder)

	c, err := svc.Submit(context.Background(), &model.CreateCaseRequest{
		Name:       " 王小明 ",
		Sex:        model.SexFemale,
		HazardCode: "5",
		Values: map[string]string{
			"pb_blood": "35",
			"hb":       "12",
			"unknown":  "1",
		},
		Overrides: map[string]bool{"hb": true},
	})
	require.NoError(t, err)
	require.Len(t, adder.added, 1)

	assert.Equal(t, "王小明", c.Name)
	assert.Equal(t, "05", c.HazardCode)
	assert.Equal(t, model.ReasonPeriodic, c.ExamReason)
	assert.Equal(t, 1, c.Grade)
	assert.True(t, c.Results["pb_blood"].IsAbnormal)
	assert.True(t, c.Results["hb"].IsAbnormal)
	assert.True(t, c.Results["hb"].Manual)
	assert.NotContains(t, c.Results, "unknown")
	assert.Contains(t, c.Results, "height")
}

func TestService_SubmitExplicitPatternWins(t *testing.T) {
	adder := &captureAdder{}
	svc := newService(t, adder)

	c, err := svc.Submit(context.Background(), &model.CreateCaseRequest{
		Name:       "a",
		HazardCode: "23",
		Values: map[string]string{
			catalog.ItemFVC:         "70",
			catalog.ItemFEV1FVC:     "60",
			catalog.ItemLungPattern: catalog.PatternOther,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.PatternOther, c.Results[catalog.ItemLungPattern].Value)

	c, err = svc.Submit(context.Background(), &model.CreateCaseRequest{
		Name:       "b",
		HazardCode: "23",
		Values: map[string]string{
			catalog.ItemFVC:     "70",
			catalog.ItemFEV1FVC: "60",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.PatternMixed, c.Results[catalog.ItemLungPattern].Value)
}

func TestService_SubmitInvalid(t *testing.T) {
	adder := &captureAdder{}
	svc := newService(t, adder)

	_, err := svc.Submit(context.Background(), &model.CreateCaseRequest{Name: "a", HazardCode: "99"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, adder.added)

	adder.err = apperrors.NewValidation("受檢者姓名為必填")
	_, err = svc.Submit(context.Background(), &model.CreateCaseRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestService_Evaluate(t *testing.T) {
	svc := newService(t, &captureAdder{})

	ev, err := svc.Evaluate(&model.CreateCaseRequest{
		HazardCode: "01",
		Values:     map[string]string{"bp_sys": "140", "bp_dia": "80"},
	})
	require.NoError(t, err)
	assert.Equal(t, "01", ev.HazardCode)
	assert.Equal(t, 1, ev.Abnormal)
	assert.True(t, ev.Results["bp_sys"].IsAbnormal)
	assert.Len(t, ev.Results, len(ev.Items))
}
