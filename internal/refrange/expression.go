// Package refrange parses reference-range expressions and judges whether a
// recorded value falls outside them.
package refrange

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Marker literals used by qualitative references.
const (
	NegativeMarker     = "(-)"
	NegativeMarkerBare = "-"
	NormalMarker       = "正常"
)

// Expression is a parsed reference expression. The set of implementations is
// closed: Range, UpperInclusive, LowerInclusive, StrictBelow, StrictAbove,
// SexConditional, Qualitative and Unrecognized.
type Expression interface {
	String() string
	expression()
}

// Range is "min-max"; both bounds are normal.
type Range struct{ Min, Max float64 }

// UpperInclusive is "<=limit".
type UpperInclusive struct{ Limit float64 }

// LowerInclusive is ">=limit".
type LowerInclusive struct{ Limit float64 }

// StrictBelow is "<limit"; the limit itself is abnormal.
type StrictBelow struct{ Limit float64 }

// StrictAbove is ">limit"; the limit itself is abnormal.
type StrictAbove struct{ Limit float64 }

// SexConditional is "M:<expr>;F:<expr>".
type SexConditional struct{ Male, Female Expression }

type QualitativeKind int

const (
	QualitativeNegative QualitativeKind = iota + 1
	QualitativeNormal
)

// Qualitative is a non-numeric reference: the negative marker or 正常.
type Qualitative struct{ Kind QualitativeKind }

// Unrecognized keeps text that matches no known form. It never judges a
// numeric value abnormal.
type Unrecognized struct{ Raw string }

func (Range) expression()          {}
func (UpperInclusive) expression() {}
func (LowerInclusive) expression() {}
func (StrictBelow) expression()    {}
func (StrictAbove) expression()    {}
func (SexConditional) expression() {}
func (Qualitative) expression()    {}
func (Unrecognized) expression()   {}

func (e Range) String() string          { return fmtNum(e.Min) + "-" + fmtNum(e.Max) }
func (e UpperInclusive) String() string { return "<=" + fmtNum(e.Limit) }
func (e LowerInclusive) String() string { return ">=" + fmtNum(e.Limit) }
func (e StrictBelow) String() string    { return "<" + fmtNum(e.Limit) }
func (e StrictAbove) String() string    { return ">" + fmtNum(e.Limit) }
func (e Unrecognized) String() string   { return e.Raw }

func (e SexConditional) String() string {
	return "M:" + stringOf(e.Male) + ";F:" + stringOf(e.Female)
}

func (e Qualitative) String() string {
	if e.Kind == QualitativeNormal {
		return NormalMarker
	}
	return NegativeMarker
}

var rangePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)$`)

// Parse turns raw reference text into an Expression. Empty text yields nil,
// meaning there is no automatic judgement. Parse never fails: text it cannot
// read becomes Unrecognized.
func Parse(raw string) Expression {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch raw {
	case NegativeMarker:
		return Qualitative{Kind: QualitativeNegative}
	case NormalMarker:
		return Qualitative{Kind: QualitativeNormal}
	}
	if e, ok := parseSexConditional(raw); ok {
		return e
	}
	return parseNumeric(raw)
}

func parseSexConditional(raw string) (Expression, bool) {
	clauses := strings.Split(raw, ";")
	if len(clauses) != 2 {
		return nil, false
	}
	var male, female Expression
	for _, clause := range clauses {
		tag, body, ok := strings.Cut(strings.TrimSpace(clause), ":")
		if !ok {
			return nil, false
		}
		switch strings.ToUpper(strings.TrimSpace(tag)) {
		case "M":
			male = parseNumeric(strings.TrimSpace(body))
		case "F":
			female = parseNumeric(strings.TrimSpace(body))
		default:
			return nil, false
		}
	}
	if male == nil || female == nil {
		return nil, false
	}
	return SexConditional{Male: male, Female: female}, true
}

// parseNumeric tries the numeric forms in precedence order: range, <=, >=,
// <, >.
func parseNumeric(raw string) Expression {
	if m := rangePattern.FindStringSubmatch(raw); m != nil {
		lo, errLo := parseFinite(m[1])
		hi, errHi := parseFinite(m[2])
		if errLo == nil && errHi == nil {
			return Range{Min: lo, Max: hi}
		}
		return Unrecognized{Raw: raw}
	}

	bounds := []struct {
		prefix string
		build  func(float64) Expression
	}{
		{"<=", func(v float64) Expression { return UpperInclusive{Limit: v} }},
		{">=", func(v float64) Expression { return LowerInclusive{Limit: v} }},
		{"<", func(v float64) Expression { return StrictBelow{Limit: v} }},
		{">", func(v float64) Expression { return StrictAbove{Limit: v} }},
	}
	for _, b := range bounds {
		if !strings.HasPrefix(raw, b.prefix) {
			continue
		}
		v, err := parseFinite(strings.TrimSpace(strings.TrimPrefix(raw, b.prefix)))
		if err != nil {
			return Unrecognized{Raw: raw}
		}
		return b.build(v)
	}
	return Unrecognized{Raw: raw}
}

type notFiniteError struct{}

func (notFiniteError) Error() string { return "not a finite number" }

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, notFiniteError{}
	}
	return v, nil
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringOf(e Expression) string {
	if e == nil {
		return ""
	}
	return e.String()
}
