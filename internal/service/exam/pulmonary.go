package exam

import (
	"math"
	"strconv"
	"strings"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/refrange"
)

const (
	obstructiveRatio   = 70.0
	restrictiveFVCPred = 80.0
)

// patternReference judges the inferred pattern: anything but 正常 is abnormal.
var patternReference = refrange.Qualitative{Kind: refrange.QualitativeNormal}

// IsPulmonaryTrigger reports whether editing id recomputes the lung pattern.
func IsPulmonaryTrigger(id string) bool {
	switch id {
	case catalog.ItemFVC, catalog.ItemFEV1, catalog.ItemFEV1FVC:
		return true
	}
	return false
}

// InferPattern derives the ventilatory pattern from FVC % predicted and the
// FEV1/FVC ratio.
func InferPattern(fvcPct, ratio float64) string {
	obstructive := ratio < obstructiveRatio
	restrictive := fvcPct < restrictiveFVCPred

	switch {
	case obstructive && restrictive:
		return catalog.PatternMixed
	case obstructive:
		return catalog.PatternObstructive
	case restrictive:
		return catalog.PatternRestrictive
	default:
		return catalog.PatternNormal
	}
}

// ApplyPulmonaryPattern recomputes the lung pattern after id was edited.
// It does nothing unless id is a trigger, the pattern field is part of
// results, and both FVC and FEV1/FVC hold numbers. The recomputed pattern
// replaces any manual flag on the pattern field. It reports whether the
// pattern was written.
func ApplyPulmonaryPattern(results map[string]model.ItemResult, edited string, sex model.Sex) bool {
	if !IsPulmonaryTrigger(edited) {
		return false
	}
	if _, ok := results[catalog.ItemLungPattern]; !ok {
		return false
	}

	fvc, ok := numeric(results[catalog.ItemFVC].Value)
	if !ok {
		return false
	}
	ratio, ok := numeric(results[catalog.ItemFEV1FVC].Value)
	if !ok {
		return false
	}

	pattern := InferPattern(fvc, ratio)
	results[catalog.ItemLungPattern] = model.ItemResult{
		Value:      pattern,
		IsAbnormal: refrange.IsAbnormal(pattern, patternReference, sex),
	}
	return true
}

func numeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
