// Package catalog holds the read-only hazard panel catalog: the shared basic
// items, the 32 regulated hazard panels and the management grade table.
package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/refrange"
)

// Registry is built once at startup and never mutated afterwards. It is safe
// for concurrent use.
type Registry struct {
	basic     []model.CheckItem
	panels    []model.HazardPanel
	grades    []model.GradeDefinition
	all       []model.CheckItem
	basicIdx  map[string]int
	panelIdx  map[string]int
	itemIdx   map[string]map[string]int
	exprs     map[string]refrange.Expression
	malformed []string
}

// New builds the registry from the static tables.
func New() (*Registry, error) {
	return build(basicItems(), hazardPanels(), gradeDefinitions())
}

func build(basic []model.CheckItem, panels []model.HazardPanel, grades []model.GradeDefinition) (*Registry, error) {
	r := &Registry{
		basic:    basic,
		panels:   panels,
		grades:   grades,
		basicIdx: make(map[string]int, len(basic)),
		panelIdx: make(map[string]int, len(panels)),
		itemIdx:  make(map[string]map[string]int, len(panels)),
		exprs:    make(map[string]refrange.Expression),
	}

	sort.SliceStable(r.panels, func(i, j int) bool {
		return codeNumber(r.panels[i].Code) < codeNumber(r.panels[j].Code)
	})

	for i, it := range r.basic {
		if _, dup := r.basicIdx[it.ID]; dup {
			return nil, fmt.Errorf("duplicate basic item id %q", it.ID)
		}
		r.basicIdx[it.ID] = i
		r.parse(it)
	}

	for i, p := range r.panels {
		if _, dup := r.panelIdx[p.Code]; dup {
			return nil, fmt.Errorf("duplicate hazard code %q", p.Code)
		}
		r.panelIdx[p.Code] = i

		idx := make(map[string]int, len(p.Items))
		for j, it := range p.Items {
			if _, dup := r.basicIdx[it.ID]; dup {
				return nil, fmt.Errorf("hazard %s: item id %q shadows a basic item", p.Code, it.ID)
			}
			if _, dup := idx[it.ID]; dup {
				return nil, fmt.Errorf("hazard %s: duplicate item id %q", p.Code, it.ID)
			}
			idx[it.ID] = j
			r.parse(it)
		}
		r.itemIdx[p.Code] = idx
	}

	for _, g := range r.grades {
		if !model.ValidGrade(g.Grade) {
			return nil, fmt.Errorf("grade %d out of range", g.Grade)
		}
	}

	r.all = r.collectAll()
	return r, nil
}

func (r *Registry) parse(it model.CheckItem) {
	if it.Reference == "" {
		return
	}
	if _, ok := r.exprs[it.Reference]; ok {
		return
	}
	expr := refrange.Parse(it.Reference)
	if _, bad := expr.(refrange.Unrecognized); bad {
		r.malformed = append(r.malformed, it.ID+": "+it.Reference)
	}
	r.exprs[it.Reference] = expr
}

func (r *Registry) collectAll() []model.CheckItem {
	seen := make(map[string]bool)
	var out []model.CheckItem
	for _, it := range r.basic {
		seen[it.ID] = true
		out = append(out, it)
	}
	for _, p := range r.panels {
		for _, it := range p.Items {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			out = append(out, it)
		}
	}
	return out
}

// Basic returns the items shared by every exam.
func (r *Registry) Basic() []model.CheckItem {
	return slices.Clone(r.basic)
}

// Panels returns every hazard panel ordered by numeric code.
func (r *Registry) Panels() []model.HazardPanel {
	return slices.Clone(r.panels)
}

// Listings returns the short form of every panel.
func (r *Registry) Listings() []model.HazardListing {
	out := make([]model.HazardListing, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, model.HazardListing{
			Code:      p.Code,
			Name:      p.Name,
			Category:  p.Category,
			ItemCount: len(p.Items),
		})
	}
	return out
}

// Panel looks a hazard panel up by its two-digit code.
func (r *Registry) Panel(code string) (model.HazardPanel, bool) {
	i, ok := r.panelIdx[code]
	if !ok {
		return model.HazardPanel{}, false
	}
	p := r.panels[i]
	p.Items = slices.Clone(p.Items)
	return p, true
}

// HazardName returns the display name of a code, or the code itself when
// the catalog does not know it.
func (r *Registry) HazardName(code string) string {
	if i, ok := r.panelIdx[code]; ok {
		return r.panels[i].Code + ". " + r.panels[i].Name
	}
	return code
}

// FirstCode is the default hazard code.
func (r *Registry) FirstCode() string {
	if len(r.panels) == 0 {
		return ""
	}
	return r.panels[0].Code
}

// ItemsFor returns the basic items followed by the panel items that apply
// to an exam of the given reason.
func (r *Registry) ItemsFor(code string, reason model.ExamReason) []model.CheckItem {
	out := slices.Clone(r.basic)
	i, ok := r.panelIdx[code]
	if !ok {
		return out
	}
	for _, it := range r.panels[i].Items {
		if it.AppliesTo(reason) {
			out = append(out, it)
		}
	}
	return out
}

// SpecialItems returns only the panel items of code that apply to reason.
func (r *Registry) SpecialItems(code string, reason model.ExamReason) []model.CheckItem {
	return r.ItemsFor(code, reason)[len(r.basic):]
}

// ResolveItem finds an item id first among the basic items, then in the
// panel of code.
func (r *Registry) ResolveItem(code, id string) (model.CheckItem, bool) {
	if i, ok := r.basicIdx[id]; ok {
		return r.basic[i], true
	}
	if idx, ok := r.itemIdx[code]; ok {
		if j, ok := idx[id]; ok {
			return r.panels[r.panelIdx[code]].Items[j], true
		}
	}
	return model.CheckItem{}, false
}

// IsBasic reports whether id is one of the shared basic items.
func (r *Registry) IsBasic(id string) bool {
	_, ok := r.basicIdx[id]
	return ok
}

// Expression returns the parsed reference of an item. It is nil when the
// item is unknown or has no reference.
func (r *Registry) Expression(code, id string) refrange.Expression {
	it, ok := r.ResolveItem(code, id)
	if !ok {
		return nil
	}
	return r.ExpressionOf(it)
}

// ExpressionOf returns the parsed reference of an item definition.
func (r *Registry) ExpressionOf(it model.CheckItem) refrange.Expression {
	if it.Reference == "" {
		return nil
	}
	if e, ok := r.exprs[it.Reference]; ok {
		return e
	}
	return refrange.Parse(it.Reference)
}

// AllItems returns every distinct item id of the catalog, basic items
// first, then panel items in code order.
func (r *Registry) AllItems() []model.CheckItem {
	return slices.Clone(r.all)
}

// Grades returns the management grade table.
func (r *Registry) Grades() []model.GradeDefinition {
	return slices.Clone(r.grades)
}

// Grade looks one grade definition up.
func (r *Registry) Grade(n int) (model.GradeDefinition, bool) {
	for _, g := range r.grades {
		if g.Grade == n {
			return g, true
		}
	}
	return model.GradeDefinition{}, false
}

// Malformed lists reference expressions that matched no known form.
func (r *Registry) Malformed() []string {
	return slices.Clone(r.malformed)
}

// NormalizeCode trims a hazard code and left-pads it to two digits, so
// "5" becomes "05".
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	if n, err := strconv.Atoi(code); err == nil && n >= 0 {
		return fmt.Sprintf("%02d", n)
	}
	if len(code) == 1 {
		return "0" + code
	}
	return code
}

func codeNumber(code string) int {
	n, err := strconv.Atoi(code)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
