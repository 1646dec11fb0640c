package refrange

import (
	"strings"

	"github.com/jwalitptl/shc-api/internal/model"
)

// abnormalKeywords mark a free-text or categorical value as abnormal no
// matter what the reference says.
var abnormalKeywords = []string{"異常", "阻塞", "限制", "混合", "有", "陽性", "+"}

// IsAbnormal judges value against expr for a subject of the given sex.
// A nil expression or an empty value is never abnormal.
func IsAbnormal(value string, expr Expression, sex model.Sex) bool {
	value = strings.TrimSpace(value)
	if expr == nil || value == "" {
		return false
	}

	v, err := parseFinite(value)
	if err != nil {
		return qualitativeAbnormal(value, expr)
	}
	return numericAbnormal(v, expr, sex)
}

// Classify parses raw and judges value against it. Callers holding a parsed
// Expression should use IsAbnormal.
func Classify(value, raw string, sex model.Sex) bool {
	return IsAbnormal(value, Parse(raw), sex)
}

func qualitativeAbnormal(value string, expr Expression) bool {
	for _, kw := range abnormalKeywords {
		if strings.Contains(value, kw) {
			return true
		}
	}
	q, ok := expr.(Qualitative)
	if !ok {
		return false
	}
	switch q.Kind {
	case QualitativeNegative:
		return value != NegativeMarker && value != NegativeMarkerBare
	case QualitativeNormal:
		return value != NormalMarker
	}
	return false
}

func numericAbnormal(v float64, expr Expression, sex model.Sex) bool {
	if sc, ok := expr.(SexConditional); ok {
		if sex == model.SexMale {
			expr = sc.Male
		} else {
			expr = sc.Female
		}
	}

	switch e := expr.(type) {
	case Range:
		return v < e.Min || v > e.Max
	case UpperInclusive:
		return v > e.Limit
	case LowerInclusive:
		return v < e.Limit
	case StrictBelow:
		return v >= e.Limit
	case StrictAbove:
		return v <= e.Limit
	default:
		return false
	}
}
