// Package report renders the printable report of an examination case and the
// grade distribution chart of the dashboard.
package report

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/model"
)

// Section headings shared by the PDF and HTML renderers.
var sectionTitles = [5]string{
	"一、基本資料",
	"二、作業經歷",
	"三、檢查原因",
	"四、檢查結果",
	"五、健康管理分級",
}

// Field is one labelled value of a report section.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ReasonMark is one line of the exam reason declaration.
type ReasonMark struct {
	Reason  model.ExamReason `json:"reason"`
	Label   string           `json:"label"`
	Checked bool             `json:"checked"`
}

// ResultRow is one check item of the results section.
type ResultRow struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Reference string `json:"reference,omitempty"`
	Abnormal  bool   `json:"abnormal"`
}

// Report is the printable form of one examination case.
type Report struct {
	Title        string                `json:"title"`
	Clinic       string                `json:"clinic,omitempty"`
	CaseID       uuid.UUID             `json:"case_id"`
	SubjectName  string                `json:"subject_name"`
	HazardName   string                `json:"hazard_name"`
	Demographics []Field               `json:"demographics"`
	Exposure     []Field               `json:"exposure"`
	Reasons      []ReasonMark          `json:"reasons"`
	Basic        []ResultRow           `json:"basic"`
	Special      []ResultRow           `json:"special"`
	Abnormal     int                   `json:"abnormal"`
	Grade        model.GradeDefinition `json:"grade"`
	DoctorNote   string                `json:"doctor_note"`
	NurseNote    string                `json:"nurse_note"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// Sections returns the five section headings in order.
func (r *Report) Sections() [5]string {
	return sectionTitles
}

// Build assembles the report of c. Results are split into the basic items
// and the items of the case's hazard panel that apply to its exam reason.
func (s *Service) Build(c *model.ExaminationCase) *Report {
	hazard := s.reg.HazardName(c.HazardCode)
	r := &Report{
		Title:       "勞工特殊健康檢查結果報告",
		Clinic:      s.cfg.ClinicName,
		CaseID:      c.ID,
		SubjectName: c.Name,
		HazardName:  hazard,
		DoctorNote:  c.DoctorNote,
		NurseNote:   c.NurseNote,
		GeneratedAt: s.now(),
	}

	r.Demographics = []Field{
		{"姓名", c.Name},
		{"員工編號", c.WorkerID},
		{"部門", c.Department},
		{"性別", c.Sex.Label()},
		{"出生日期", c.BirthDate},
		{"到職日期", c.HireDate},
		{"作業類別", hazard},
		{"檢查日期", c.ExamDate},
	}

	e := c.Exposure
	r.Exposure = []Field{
		{"過去作業內容", e.PastJob},
		{"過去作業期間", period(e.PastFrom, e.PastTo)},
		{"過去作業年資", e.PastYears},
		{"目前作業內容", e.CurrentJob},
		{"目前作業起始", e.CurrentFrom},
		{"目前作業年資", e.CurrentYears},
		{"每日暴露時數", hours(e.DailyHours)},
	}

	for _, reason := range model.ExamReasons {
		r.Reasons = append(r.Reasons, ReasonMark{
			Reason:  reason,
			Label:   reason.Label(),
			Checked: reason == c.ExamReason,
		})
	}

	for _, it := range s.reg.ItemsFor(c.HazardCode, c.ExamReason) {
		res := c.Results[it.ID]
		row := ResultRow{
			ID:        it.ID,
			Label:     it.Label,
			Value:     res.Value,
			Unit:      it.Unit,
			Reference: it.Reference,
			Abnormal:  res.IsAbnormal,
		}
		if res.IsAbnormal {
			r.Abnormal++
		}
		if s.reg.IsBasic(it.ID) {
			r.Basic = append(r.Basic, row)
		} else {
			r.Special = append(r.Special, row)
		}
	}

	if g, ok := s.reg.Grade(c.Grade); ok {
		r.Grade = g
	} else {
		r.Grade = model.GradeDefinition{Grade: c.Grade, Label: strconv.Itoa(c.Grade)}
	}
	return r
}

func period(from, to string) string {
	switch {
	case from == "" && to == "":
		return ""
	case to == "":
		return from + " 起"
	default:
		return from + " ~ " + to
	}
}

func hours(h float64) string {
	if h == 0 {
		return ""
	}
	return strconv.FormatFloat(h, 'f', -1, 64) + " 小時"
}
