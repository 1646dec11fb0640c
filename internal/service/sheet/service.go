// Package sheet imports examination cases from spreadsheets and writes the
// import template and case exports.
package sheet

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/service/casebook"
	"github.com/jwalitptl/shc-api/internal/service/event"
	"github.com/jwalitptl/shc-api/internal/service/exam"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

const templateCacheKey = "template"

// CaseBook is the part of the case book the importer and exporter need.
type CaseBook interface {
	Add(ctx context.Context, c *model.ExaminationCase) error
	List(ctx context.Context, filters *model.CaseFilters) ([]*model.ExaminationCase, error)
}

// RowIssue explains why a data row was not imported. Row is the 1-based
// sheet row number.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported       int        `json:"imported"`
	CaseIDs        []string   `json:"case_ids"`
	Skipped        []RowIssue `json:"skipped"`
	IgnoredColumns []string   `json:"ignored_columns,omitempty"`
}

type Service struct {
	reg     *catalog.Registry
	cases   CaseBook
	events  event.Publisher
	metrics *metrics.Metrics
	log     *logger.Logger
	cache   *cache.Cache
}

func NewService(reg *catalog.Registry, cases CaseBook, events event.Publisher, m *metrics.Metrics, log *logger.Logger, templateTTL time.Duration) *Service {
	return &Service{
		reg:     reg,
		cases:   cases,
		events:  events,
		metrics: m,
		log:     log.WithFields(map[string]interface{}{"component": "sheet"}),
		cache:   cache.New(templateTTL, 2*templateTTL),
	}
}

// Import reads the first sheet of the workbook in r. A file that cannot be
// read as a workbook imports nothing and fails with an Unprocessable error.
// Otherwise every row is handled on its own: rows without a name or with an
// unknown hazard code are skipped and reported, the rest are stored.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	defer func() { s.metrics.ImportLatency.Observe(time.Since(start).Seconds()) }()

	rows, err := readFirstSheet(r)
	if err != nil {
		s.metrics.ImportFailures.Inc()
		return nil, err
	}

	parsed, result := s.parseRows(rows)

	ctx = casebook.WithSource(ctx, casebook.SourceImport)
	for _, p := range parsed {
		if err := s.cases.Add(ctx, p.c); err != nil {
			reason := err.Error()
			if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.ErrValidation {
				reason = appErr.Message
			}
			result.Skipped = append(result.Skipped, RowIssue{Row: p.row, Reason: reason})
			continue
		}
		result.Imported++
		result.CaseIDs = append(result.CaseIDs, p.c.ID.String())
	}

	s.metrics.ImportRows.WithLabelValues("imported").Add(float64(result.Imported))
	s.metrics.ImportRows.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
	s.log.Info("import completed", "imported", result.Imported, "skipped", len(result.Skipped))
	s.events.Publish(ctx, event.Event{
		Type:     event.ImportCompleted,
		Imported: result.Imported,
		Skipped:  len(result.Skipped),
	})
	return result, nil
}

func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewUnprocessable("無法讀取試算表檔案", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, apperrors.NewUnprocessable("試算表沒有工作表", nil)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, apperrors.NewUnprocessable("無法讀取工作表內容", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewUnprocessable("試算表缺少標題列", nil)
	}
	return rows, nil
}

type parsedRow struct {
	row int
	c   *model.ExaminationCase
}

func (s *Service) parseRows(rows [][]string) ([]parsedRow, *ImportResult) {
	result := &ImportResult{CaseIDs: []string{}, Skipped: []RowIssue{}}

	headers := rows[0]
	kinds := make([]headerKind, len(headers))
	for i, h := range headers {
		kinds[i] = parseHeader(h)
		if kinds[i] == (headerKind{}) && strings.TrimSpace(h) != "" {
			result.IgnoredColumns = append(result.IgnoredColumns, strings.TrimSpace(h))
		}
	}

	// item columns holding values for items that are not on a row's form
	offForm := make(map[int]bool)

	var parsed []parsedRow
	for i, cells := range rows[1:] {
		rowNum := i + 2
		if blank(cells) {
			continue
		}
		c, ignored, reason := s.buildCase(kinds, cells)
		if reason != "" {
			s.log.Debug("import row skipped", "row", rowNum, "reason", reason)
			result.Skipped = append(result.Skipped, RowIssue{Row: rowNum, Reason: reason})
			continue
		}
		for _, col := range ignored {
			offForm[col] = true
		}
		parsed = append(parsed, parsedRow{row: rowNum, c: c})
	}

	for i, h := range headers {
		if offForm[i] {
			result.IgnoredColumns = append(result.IgnoredColumns, strings.TrimSpace(h))
		}
	}
	return parsed, result
}

// buildCase turns one data row into a case. Check item values are entered
// the way the form enters them, so the results hold exactly the items of
// the row's hazard and exam reason. ignored lists the item columns that
// carried a value for an item not on that form. A non-empty reason means
// the row is skipped.
func (s *Service) buildCase(kinds []headerKind, cells []string) (c *model.ExaminationCase, ignored []int, reason string) {
	fields := make(map[string]string)
	for i, k := range kinds {
		if k.field != "" && i < len(cells) {
			fields[k.field] = strings.TrimSpace(cells[i])
		}
	}

	if fields[colName] == "" {
		return nil, nil, casebook.MsgNameRequired
	}

	hazard := catalog.NormalizeCode(fields[colHazardCode])
	if hazard == "" {
		hazard = s.reg.FirstCode()
	}
	if _, ok := s.reg.Panel(hazard); !ok {
		return nil, nil, fmt.Sprintf("未知的作業代碼 %s", fields[colHazardCode])
	}

	grade := model.GradeMin
	if raw := fields[colGrade]; raw != "" {
		g, err := strconv.ParseFloat(raw, 64)
		if err != nil || g != float64(int(g)) || !model.ValidGrade(int(g)) {
			return nil, nil, casebook.MsgInvalidGrade
		}
		grade = int(g)
	}

	sex := model.ParseSex(fields[colSex])
	examReason := model.ParseExamReason(fields[colExamReason])
	d := exam.NewDraft(s.reg, hazard, examReason, sex)

	values := make(map[string]string)
	for i, k := range kinds {
		if k.itemID == "" || i >= len(cells) {
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}
		if !d.Has(k.itemID) {
			ignored = append(ignored, i)
			continue
		}
		values[k.itemID] = v
	}
	// form order puts the spirometry inputs before the lung pattern, so a
	// pattern given in the sheet wins over the inferred one
	for _, it := range d.Items() {
		if v, ok := values[it.ID]; ok {
			d.SetValue(it.ID, v)
		}
	}

	c = &model.ExaminationCase{
		Name:       fields[colName],
		WorkerID:   fields[colWorkerID],
		Department: fields[colDepartment],
		Sex:        sex,
		BirthDate:  fields[colBirthDate],
		HireDate:   fields[colHireDate],
		HazardCode: hazard,
		ExamReason: examReason,
		ExamDate:   fields[colExamDate],
		Grade:      grade,
		DoctorNote: fields[colDoctorNote],
		NurseNote:  fields[colNurseNote],
		Exposure: model.Exposure{
			CurrentJob:   fields[colCurrentJob],
			CurrentFrom:  fields[colCurrentFrom],
			CurrentYears: fields[colCurrentYears],
			PastJob:      fields[colPastJob],
			PastFrom:     fields[colPastFrom],
			PastTo:       fields[colPastTo],
			PastYears:    fields[colPastYears],
		},
		Results: d.Results(),
	}
	if h, err := strconv.ParseFloat(fields[colDailyHours], 64); err == nil {
		c.Exposure.DailyHours = h
	}
	return c, ignored, ""
}

func blank(cells []string) bool {
	for _, v := range cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Template returns the import template workbook. The bytes are cached; the
// catalog never changes while the process runs.
func (s *Service) Template(_ context.Context) ([]byte, error) {
	if b, ok := s.cache.Get(templateCacheKey); ok {
		return b.([]byte), nil
	}

	b, err := s.writeTemplate()
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(templateCacheKey, b)
	return b, nil
}

func (s *Service) writeTemplate() ([]byte, error) {
	items := s.reg.AllItems()

	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.close()

	headers, widths := dataHeaders(items)
	if err := w.addSheet(DataSheet, headers, widths); err != nil {
		return nil, err
	}
	for i, ex := range exampleCases() {
		if err := w.setRow(DataSheet, i+2, caseRow(ex, items)); err != nil {
			return nil, err
		}
	}

	if err := s.writeHazardSheet(w); err != nil {
		return nil, err
	}
	return w.bytes()
}

func (s *Service) writeHazardSheet(w *workbook) error {
	if err := w.addSheet(HazardSheet, []string{"作業代碼", "作業名稱", "危害類別", "檢查項目數"}, []float64{10, 28, 14, 12}); err != nil {
		return err
	}
	for i, l := range s.reg.Listings() {
		row := []string{l.Code, l.Name, string(l.Category), strconv.Itoa(l.ItemCount)}
		if err := w.setRow(HazardSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the current cases in the template layout, so an export can
// be imported again. Abnormal values are highlighted.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	cases, err := s.cases.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to export cases: %w", err)
	}
	items := s.reg.AllItems()

	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer w.close()

	headers, widths := dataHeaders(items)
	if err := w.addSheet(DataSheet, headers, widths); err != nil {
		return nil, err
	}
	for i, c := range cases {
		row := i + 2
		if err := w.setRow(DataSheet, row, caseRow(c, items)); err != nil {
			return nil, err
		}
		for j, it := range items {
			if c.Results[it.ID].IsAbnormal {
				if err := w.markAbnormal(DataSheet, len(columns)+j+1, row); err != nil {
					return nil, fmt.Errorf("failed to mark abnormal cell: %w", err)
				}
			}
		}
	}

	if err := s.writeHazardSheet(w); err != nil {
		return nil, err
	}
	return w.bytes()
}

// exampleCases are the two illustrative rows of the template.
func exampleCases() []*model.ExaminationCase {
	return []*model.ExaminationCase{
		{
			Name:       "王小明",
			WorkerID:   "E0001",
			Department: "製造部",
			Sex:        model.SexMale,
			BirthDate:  "1985-04-12",
			HireDate:   "2012-07-01",
			HazardCode: "05",
			ExamReason: model.ReasonPeriodic,
			ExamDate:   "2024-03-15",
			Grade:      2,
			DoctorNote: "血中鉛偏高，建議三個月後複查",
			Exposure:   model.Exposure{CurrentJob: "鉛蓄電池組裝", CurrentYears: "8", DailyHours: 8},
			Results: map[string]model.ItemResult{
				"height":   {Value: "172"},
				"weight":   {Value: "70"},
				"bp_sys":   {Value: "128"},
				"bp_dia":   {Value: "82"},
				"pb_blood": {Value: "42"},
				"hb":       {Value: "14.2"},
				"hct":      {Value: "43"},
				"bun":      {Value: "15"},
				"cre":      {Value: "0.9"},
			},
		},
		{
			Name:       "李小華",
			WorkerID:   "E0002",
			Department: "研磨課",
			Sex:        model.SexFemale,
			BirthDate:  "1992-11-03",
			HireDate:   "2024-02-20",
			HazardCode: "23",
			ExamReason: model.ReasonNewHire,
			ExamDate:   "2024-03-15",
			Grade:      1,
			Exposure:   model.Exposure{CurrentJob: "金屬研磨", DailyHours: 6},
			Results: map[string]model.ItemResult{
				"height":            {Value: "160"},
				"weight":            {Value: "52"},
				"bp_sys":            {Value: "112"},
				"bp_dia":            {Value: "70"},
				"chest_xray":        {Value: "正常"},
				catalog.ItemFVC:     {Value: "85"},
				catalog.ItemFEV1:    {Value: "82"},
				catalog.ItemFEV1FVC: {Value: "78"},
			},
		},
	}
}
