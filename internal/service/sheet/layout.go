package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwalitptl/shc-api/internal/model"
)

// Sheet names of the template and export workbooks.
const (
	DataSheet   = "匯入範本"
	HazardSheet = "作業代碼"
)

// Keys of the demographic columns.
const (
	colName         = "name"
	colWorkerID     = "worker_id"
	colDepartment   = "department"
	colSex          = "sex"
	colBirthDate    = "birth_date"
	colHireDate     = "hire_date"
	colHazardCode   = "hazard_code"
	colExamReason   = "exam_reason"
	colExamDate     = "exam_date"
	colGrade        = "grade"
	colDoctorNote   = "doctor_note"
	colNurseNote    = "nurse_note"
	colCurrentJob   = "current_job"
	colCurrentFrom  = "current_from"
	colCurrentYears = "current_years"
	colPastJob      = "past_job"
	colPastFrom     = "past_from"
	colPastTo       = "past_to"
	colPastYears    = "past_years"
	colDailyHours   = "daily_hours"
)

type column struct {
	key     string
	header  string
	aliases []string
	width   float64
	get     func(c *model.ExaminationCase) string
}

// columns lists the demographic columns in sheet order. Check item columns
// follow them.
var columns = []column{
	{colName, "姓名", []string{"name", "subject name"}, 12, func(c *model.ExaminationCase) string { return c.Name }},
	{colWorkerID, "員工編號", []string{"worker id", "employee id"}, 12, func(c *model.ExaminationCase) string { return c.WorkerID }},
	{colDepartment, "部門", []string{"department"}, 14, func(c *model.ExaminationCase) string { return c.Department }},
	{colSex, "性別", []string{"sex", "gender"}, 8, func(c *model.ExaminationCase) string { return string(c.Sex) }},
	{colBirthDate, "出生日期", []string{"birth date"}, 12, func(c *model.ExaminationCase) string { return c.BirthDate }},
	{colHireDate, "到職日期", []string{"hire date"}, 12, func(c *model.ExaminationCase) string { return c.HireDate }},
	{colHazardCode, "作業代碼", []string{"hazard code", "hazard"}, 10, func(c *model.ExaminationCase) string { return c.HazardCode }},
	{colExamReason, "檢查原因", []string{"exam reason", "reason"}, 12, func(c *model.ExaminationCase) string { return c.ExamReason.Label() }},
	{colExamDate, "檢查日期", []string{"exam date"}, 12, func(c *model.ExaminationCase) string { return c.ExamDate }},
	{colGrade, "管理分級", []string{"grade", "management grade"}, 10, func(c *model.ExaminationCase) string { return strconv.Itoa(c.Grade) }},
	{colDoctorNote, "醫師建議", []string{"doctor note", "clinician note"}, 24, func(c *model.ExaminationCase) string { return c.DoctorNote }},
	{colNurseNote, "護理備註", []string{"nurse note", "nursing note"}, 24, func(c *model.ExaminationCase) string { return c.NurseNote }},
	{colCurrentJob, "目前作業內容", []string{"current job"}, 16, func(c *model.ExaminationCase) string { return c.Exposure.CurrentJob }},
	{colCurrentFrom, "目前作業起始", []string{"current from"}, 12, func(c *model.ExaminationCase) string { return c.Exposure.CurrentFrom }},
	{colCurrentYears, "目前作業年資", []string{"current years"}, 10, func(c *model.ExaminationCase) string { return c.Exposure.CurrentYears }},
	{colPastJob, "過去作業內容", []string{"past job"}, 16, func(c *model.ExaminationCase) string { return c.Exposure.PastJob }},
	{colPastFrom, "過去作業起始", []string{"past from"}, 12, func(c *model.ExaminationCase) string { return c.Exposure.PastFrom }},
	{colPastTo, "過去作業結束", []string{"past to"}, 12, func(c *model.ExaminationCase) string { return c.Exposure.PastTo }},
	{colPastYears, "過去作業年資", []string{"past years"}, 10, func(c *model.ExaminationCase) string { return c.Exposure.PastYears }},
	{colDailyHours, "每日暴露時數", []string{"daily hours"}, 10, func(c *model.ExaminationCase) string {
		if c.Exposure.DailyHours == 0 {
			return ""
		}
		return strconv.FormatFloat(c.Exposure.DailyHours, 'f', -1, 64)
	}},
}

var headerIndex = func() map[string]string {
	idx := make(map[string]string)
	for _, col := range columns {
		idx[col.header] = col.key
		idx[col.key] = col.key
		for _, a := range col.aliases {
			idx[a] = col.key
		}
	}
	return idx
}()

// itemSuffix matches the trailing "(id)" of a check item header. Full-width
// parentheses are accepted as well.
var itemSuffix = regexp.MustCompile(`[(（]\s*([A-Za-z0-9_]+)\s*[)）]\s*$`)

// headerKind classifies one header cell.
type headerKind struct {
	field  string // demographic column key
	itemID string // check item id
}

func parseHeader(raw string) headerKind {
	h := strings.TrimSpace(raw)
	if key, ok := headerIndex[strings.ToLower(h)]; ok {
		return headerKind{field: key}
	}
	if key, ok := headerIndex[h]; ok {
		return headerKind{field: key}
	}
	if m := itemSuffix.FindStringSubmatch(h); m != nil {
		return headerKind{itemID: m[1]}
	}
	return headerKind{}
}
