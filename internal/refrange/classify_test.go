package refrange

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/shc-api/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Expression
	}{
		{"", nil},
		{"  ", nil},
		{"70-100", Range{Min: 70, Max: 100}},
		{"1.003-1.035", Range{Min: 1.003, Max: 1.035}},
		{"<=1.5", UpperInclusive{Limit: 1.5}},
		{">=80", LowerInclusive{Limit: 80}},
		{"<140", StrictBelow{Limit: 140}},
		{">40", StrictAbove{Limit: 40}},
		{"(-)", Qualitative{Kind: QualitativeNegative}},
		{"正常", Qualitative{Kind: QualitativeNormal}},
		{"M:13.1-17.2;F:11.0-15.2", SexConditional{Male: Range{Min: 13.1, Max: 17.2}, Female: Range{Min: 11, Max: 15.2}}},
		{"M:<40;F:<30", SexConditional{Male: StrictBelow{Limit: 40}, Female: StrictBelow{Limit: 30}}},
		{"<abc", Unrecognized{Raw: "<abc"}},
		{"M<40;F<30", Unrecognized{Raw: "M<40;F<30"}},
		{"<Inf", Unrecognized{Raw: "<Inf"}},
		{"see note", Unrecognized{Raw: "see note"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestIsAbnormal_AbsentReference(t *testing.T) {
	for _, v := range []string{"", "0", "123", "異常", "(+)", "abc"} {
		assert.False(t, IsAbnormal(v, nil, model.SexMale), "value %q", v)
		assert.False(t, IsAbnormal(v, nil, model.SexFemale), "value %q", v)
		assert.False(t, Classify(v, "", model.SexMale), "value %q", v)
	}
}

func TestIsAbnormal_EmptyValue(t *testing.T) {
	assert.False(t, Classify("", "70-100", model.SexMale))
	assert.False(t, Classify("  ", "(-)", model.SexMale))
}

func TestIsAbnormal_RangeInclusive(t *testing.T) {
	expr := Parse("70-100")
	for v := 60.0; v <= 110; v += 0.5 {
		want := !(v >= 70 && v <= 100)
		assert.Equal(t, want, IsAbnormal(fmt.Sprint(v), expr, model.SexMale), "value %v", v)
	}
}

func TestIsAbnormal_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ref   string
		want  bool
	}{
		{"strict below just under", "139.999", "<140", false},
		{"strict below at limit", "140", "<140", true},
		{"strict above at limit", "40", ">40", true},
		{"strict above just over", "40.01", ">40", false},
		{"upper inclusive at limit", "1.5", "<=1.5", false},
		{"upper inclusive over", "1.6", "<=1.5", true},
		{"lower inclusive at limit", "80", ">=80", false},
		{"lower inclusive under", "79.9", ">=80", true},
		{"numeric against negative marker", "5", "(-)", false},
		{"malformed bound", "5", "<x", false},
		{"unrecognized text", "5", "see note", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, tt.ref, model.SexMale))
		})
	}
}

func TestIsAbnormal_SexConditional(t *testing.T) {
	assert.False(t, Classify("16", "M:13.1-17.2;F:11.0-15.2", model.SexMale))
	assert.True(t, Classify("16", "M:13.1-17.2;F:11.0-15.2", model.SexFemale))
	assert.True(t, Classify("12", "M:13.1-17.2;F:11.0-15.2", model.SexMale))
	assert.False(t, Classify("12", "M:13.1-17.2;F:11.0-15.2", model.SexFemale))

	// any sex other than male takes the female clause
	assert.True(t, Classify("16", "M:13.1-17.2;F:11.0-15.2", model.Sex("")))

	assert.True(t, Classify("35", "M:<40;F:<30", model.SexFemale))
	assert.False(t, Classify("35", "M:<40;F:<30", model.SexMale))
}

func TestIsAbnormal_SexConditionalIgnoresOtherClause(t *testing.T) {
	a := "M:13.1-17.2;F:11.0-15.2"
	b := "M:13.1-17.2;F:1-2"
	c := "M:13.1-17.2;F:junk"
	for v := 10.0; v <= 20; v += 0.1 {
		s := fmt.Sprintf("%.1f", v)
		want := Classify(s, a, model.SexMale)
		assert.Equal(t, want, Classify(s, b, model.SexMale), "value %s", s)
		assert.Equal(t, want, Classify(s, c, model.SexMale), "value %s", s)
	}
}

func TestIsAbnormal_Qualitative(t *testing.T) {
	tests := []struct {
		value string
		ref   string
		want  bool
	}{
		{"(-)", "(-)", false},
		{"-", "(-)", false},
		{"(+)", "(-)", true},
		{"(+/-)", "(-)", true},
		{"(++)", "(-)", true},
		{"trace", "(-)", true},
		{"正常", "正常", false},
		{"異常", "正常", true},
		{"其他", "正常", true},
		{"阻塞性通氣障礙", "正常", true},
		{"混合型通氣障礙", "正常", true},
		{"陽性", "70-100", true},
		{"有", "<5", true},
		{"+", "<5", true},
		{"none", "<5", false},
		{"無", "(-)", true},
	}

	for _, tt := range tests {
		t.Run(tt.value+" vs "+tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, tt.ref, model.SexFemale))
		})
	}
}

func TestExpressionString(t *testing.T) {
	for _, raw := range []string{"70-100", "<=1.5", ">=80", "<140", ">40", "(-)", "正常", "M:13.1-17.2;F:11-15.2"} {
		assert.Equal(t, raw, Parse(raw).String())
	}
}
