package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/shc-api/internal/model"
)

// workbook wraps the excelize file while a template or export is written.
type workbook struct {
	f        *excelize.File
	header   int
	abnormal int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	abnormal, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#DC2626"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create abnormal style: %w", err)
	}

	return &workbook{f: f, header: header, abnormal: abnormal}, nil
}

// addSheet creates a sheet with a styled, frozen header row. The default
// Sheet1 is removed once a real sheet exists.
func (w *workbook) addSheet(name string, headers []string, widths []float64) error {
	index, err := w.f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if w.f.GetSheetName(0) == "Sheet1" {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
		index, _ = w.f.GetSheetIndex(name)
	}
	if len(w.f.GetSheetList()) == 1 {
		w.f.SetActiveSheet(index)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := w.f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := w.f.SetCellStyle(name, "A1", last, w.header); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := w.f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

// setRow writes string cells starting at column A. Empty strings are left
// blank.
func (w *workbook) setRow(sheet string, row int, values []string) error {
	for col, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := w.f.SetCellStr(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func (w *workbook) markAbnormal(sheet string, col, row int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	return w.f.SetCellStyle(sheet, cell, cell, w.abnormal)
}

func (w *workbook) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *workbook) close() {
	w.f.Close()
}

// dataHeaders returns the header row of the data sheet and the item ids of
// the item columns, in order.
func dataHeaders(items []model.CheckItem) (headers []string, widths []float64) {
	for _, col := range columns {
		headers = append(headers, col.header)
		widths = append(widths, col.width)
	}
	for _, it := range items {
		headers = append(headers, it.Header())
		widths = append(widths, 14)
	}
	return headers, widths
}

// caseRow renders one case in data sheet column order.
func caseRow(c *model.ExaminationCase, items []model.CheckItem) []string {
	row := make([]string, 0, len(columns)+len(items))
	for _, col := range columns {
		row = append(row, col.get(c))
	}
	for _, it := range items {
		row = append(row, c.Results[it.ID].Value)
	}
	return row
}
