package model

// ValueType tells the entry form how a check item is captured.
type ValueType string

const (
	ValueNumeric     ValueType = "numeric"
	ValueCategorical ValueType = "categorical"
)

// Applicability decides which exam reasons show an item.
type Applicability string

const (
	ApplyAlways   Applicability = "always"
	ApplyEntry    Applicability = "entry"
	ApplyPeriodic Applicability = "periodic"
)

// HazardCategory groups hazard panels for display.
type HazardCategory string

const (
	CategoryPhysical          HazardCategory = "物理性危害"
	CategoryChemical          HazardCategory = "化學性危害"
	CategoryDust              HazardCategory = "粉塵危害"
	CategorySpecificSubstance HazardCategory = "特定化學物質"
	CategoryOther             HazardCategory = "其他"
)

// CheckItem is one static check item definition.
type CheckItem struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Unit          string        `json:"unit,omitempty"`
	ValueType     ValueType     `json:"value_type"`
	Options       []string      `json:"options,omitempty"`
	Reference     string        `json:"reference,omitempty"`
	Applicability Applicability `json:"applicability"`
}

// Header is the spreadsheet column header for the item, "label (id)".
func (i CheckItem) Header() string {
	return i.Label + " (" + i.ID + ")"
}

// AppliesTo reports whether the item belongs on an exam with the given reason.
func (i CheckItem) AppliesTo(reason ExamReason) bool {
	switch i.Applicability {
	case ApplyEntry:
		return reason.IsEntry()
	case ApplyPeriodic:
		return !reason.IsEntry()
	default:
		return true
	}
}

// HazardPanel is the set of check items mandated for one regulated hazard.
type HazardPanel struct {
	Code     string         `json:"code"`
	Name     string         `json:"name"`
	Category HazardCategory `json:"category"`
	Items    []CheckItem    `json:"items"`
}

// HazardListing is the short form of a panel used by catalog listings.
type HazardListing struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Category  HazardCategory `json:"category"`
	ItemCount int            `json:"item_count"`
}
