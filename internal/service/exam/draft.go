package exam

import (
	"maps"
	"strings"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/refrange"
)

// Draft is an exam being filled in. Its result set always holds exactly the
// items that apply to the selected hazard and reason.
type Draft struct {
	reg     *catalog.Registry
	hazard  string
	reason  model.ExamReason
	sex     model.Sex
	items   []model.CheckItem
	exprs   map[string]refrange.Expression
	results map[string]model.ItemResult
}

// NewDraft starts an empty draft. An unknown hazard yields a form with the
// basic items only.
func NewDraft(reg *catalog.Registry, hazard string, reason model.ExamReason, sex model.Sex) *Draft {
	d := &Draft{reg: reg, hazard: hazard, reason: reason, sex: sex}
	d.rebuild()
	return d
}

// rebuild recomputes the applicable items. Values of items that are still
// on the form are carried over and judged again.
func (d *Draft) rebuild() {
	old := d.results
	d.items = d.reg.ItemsFor(d.hazard, d.reason)
	d.exprs = make(map[string]refrange.Expression, len(d.items))
	d.results = make(map[string]model.ItemResult, len(d.items))

	for _, it := range d.items {
		d.exprs[it.ID] = d.reg.ExpressionOf(it)
		r := model.ItemResult{}
		if prev, ok := old[it.ID]; ok {
			r = prev
			if !r.Manual {
				r.IsAbnormal = refrange.IsAbnormal(r.Value, d.exprs[it.ID], d.sex)
			}
		}
		d.results[it.ID] = r
	}
}

func (d *Draft) Hazard() string           { return d.hazard }
func (d *Draft) Reason() model.ExamReason { return d.reason }
func (d *Draft) Sex() model.Sex           { return d.sex }

// Items returns the form items in display order.
func (d *Draft) Items() []model.CheckItem {
	out := make([]model.CheckItem, len(d.items))
	copy(out, d.items)
	return out
}

// Results returns a copy of the current result set.
func (d *Draft) Results() map[string]model.ItemResult {
	return maps.Clone(d.results)
}

// Has reports whether id is on the form.
func (d *Draft) Has(id string) bool {
	_, ok := d.results[id]
	return ok
}

// SetValue records a value and judges it against the item's reference. A
// manual flag on the same item is dropped. Editing a spirometry value
// recomputes the lung pattern in the same step. Ids not on the form are
// ignored and reported as false.
func (d *Draft) SetValue(id, value string) bool {
	if !d.Has(id) {
		return false
	}
	value = strings.TrimSpace(value)
	d.results[id] = model.ItemResult{
		Value:      value,
		IsAbnormal: refrange.IsAbnormal(value, d.exprs[id], d.sex),
	}
	ApplyPulmonaryPattern(d.results, id, d.sex)
	return true
}

// SetAbnormal is the clinician's override of the abnormal flag. It sticks
// until the item itself, or for the lung pattern one of its inputs, is
// edited again.
func (d *Draft) SetAbnormal(id string, abnormal bool) bool {
	r, ok := d.results[id]
	if !ok {
		return false
	}
	r.IsAbnormal = abnormal
	r.Manual = true
	d.results[id] = r
	return true
}

// setSex changes the subject's sex and judges every non-overridden value
// again, since sex-conditional references depend on it.
func (d *Draft) setSex(sex model.Sex) {
	if sex == d.sex {
		return
	}
	d.sex = sex
	for id, r := range d.results {
		if r.Manual {
			continue
		}
		r.IsAbnormal = refrange.IsAbnormal(r.Value, d.exprs[id], d.sex)
		d.results[id] = r
	}
}

// setReason switches the exam reason, which changes the entry-only and
// periodic-only items on the form.
func (d *Draft) setReason(reason model.ExamReason) {
	if reason == d.reason {
		return
	}
	d.reason = reason
	d.rebuild()
}

// setHazard switches the hazard panel.
func (d *Draft) setHazard(code string) {
	if code == d.hazard {
		return
	}
	d.hazard = code
	d.rebuild()
}
