package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	rowHeight  = 7.0
)

var (
	labelFill = [3]int{240, 244, 248}
	alertText = [3]int{220, 38, 38}
)

// RenderPDF writes r as an A4 PDF. The configured font must be a TrueType
// font covering the CJK glyphs of the report, otherwise ErrPDFUnavailable
// is returned and nothing is written.
func (s *Service) RenderPDF(r *Report, w io.Writer) error {
	if s.cfg.FontPath == "" {
		return unavailable("no font configured", nil)
	}
	font, err := os.ReadFile(s.cfg.FontPath)
	if err != nil {
		return unavailable("cannot read font "+s.cfg.FontPath, err)
	}
	if !isTrueType(font) {
		return unavailable(s.cfg.FontPath+" is not a TrueType font", nil)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(s.cfg.FontFamily, "", font)
	pdf.SetFont(s.cfg.FontFamily, "", 10)
	if pdf.Err() {
		return unavailable("cannot load font "+s.cfg.FontPath, pdf.Error())
	}
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("shc-api", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("")

	p := &pdfWriter{pdf: pdf, family: s.cfg.FontFamily}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin + 3)
		p.font(8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s  %d / {nb}", r.GeneratedAt.Format("2006-01-02 15:04"), pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	p.title(r)

	p.section(sectionTitles[0])
	p.fields(r.Demographics)

	p.section(sectionTitles[1])
	p.fields(r.Exposure)

	p.section(sectionTitles[2])
	p.reasons(r.Reasons)

	p.section(sectionTitles[3])
	p.results("基本檢查項目", r.Basic)
	p.results("特殊檢查項目", r.Special)

	p.section(sectionTitles[4])
	p.grade(r)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	s.rendered(string(FormatPDF))
	return nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	family string
}

func (p *pdfWriter) font(size float64) {
	p.pdf.SetFont(p.family, "", size)
}

func (p *pdfWriter) width() float64 {
	w, _ := p.pdf.GetPageSize()
	return w - 2*pageMargin
}

func (p *pdfWriter) title(r *Report) {
	p.font(16)
	p.pdf.CellFormat(0, 10, r.Title, "", 1, "C", false, 0, "")
	if r.Clinic != "" {
		p.font(10)
		p.pdf.CellFormat(0, 6, r.Clinic, "", 1, "C", false, 0, "")
	}
	p.pdf.Ln(2)
}

func (p *pdfWriter) section(title string) {
	p.pdf.Ln(3)
	p.font(12)
	p.pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	p.pdf.Ln(1)
}

// fields lays labelled values out two pairs per row.
func (p *pdfWriter) fields(fs []Field) {
	p.font(10)
	col := p.width() / 2
	label := col * 0.35
	for i, f := range fs {
		ln := 0
		if i%2 == 1 || i == len(fs)-1 {
			ln = 1
		}
		p.pdf.SetFillColor(labelFill[0], labelFill[1], labelFill[2])
		p.pdf.CellFormat(label, rowHeight, f.Label, "1", 0, "L", true, 0, "")
		p.pdf.CellFormat(col-label, rowHeight, orDash(f.Value), "1", ln, "L", false, 0, "")
	}
}

func (p *pdfWriter) reasons(marks []ReasonMark) {
	p.font(10)
	parts := make([]string, 0, len(marks))
	for _, m := range marks {
		box := "[ ]"
		if m.Checked {
			box = "[V]"
		}
		parts = append(parts, box+" "+m.Label)
	}
	p.pdf.CellFormat(0, rowHeight, strings.Join(parts, "    "), "", 1, "L", false, 0, "")
}

var resultColumns = []struct {
	header string
	share  float64
}{
	{"項目", 0.30},
	{"結果", 0.18},
	{"單位", 0.14},
	{"參考值", 0.24},
	{"判定", 0.14},
}

func (p *pdfWriter) results(caption string, rows []ResultRow) {
	if len(rows) == 0 {
		return
	}
	w := p.width()
	p.font(10)
	p.pdf.CellFormat(0, rowHeight, caption, "", 1, "L", false, 0, "")

	p.font(9)
	p.pdf.SetFillColor(labelFill[0], labelFill[1], labelFill[2])
	for i, c := range resultColumns {
		ln := 0
		if i == len(resultColumns)-1 {
			ln = 1
		}
		p.pdf.CellFormat(w*c.share, rowHeight, c.header, "1", ln, "C", true, 0, "")
	}

	for _, row := range rows {
		verdict := "正常"
		if row.Value == "" {
			verdict = "-"
		}
		if row.Abnormal {
			verdict = "異常"
		}
		cells := []string{row.Label, orDash(row.Value), row.Unit, row.Reference, verdict}
		for i, text := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			if row.Abnormal && (i == 1 || i == 4) {
				p.pdf.SetTextColor(alertText[0], alertText[1], alertText[2])
			}
			p.pdf.CellFormat(w*resultColumns[i].share, rowHeight, text, "1", ln, "L", false, 0, "")
			p.pdf.SetTextColor(0, 0, 0)
		}
	}
	p.pdf.Ln(2)
}

func (p *pdfWriter) grade(r *Report) {
	p.font(11)
	red, green, blue := hexColor(r.Grade.Color)
	p.pdf.SetTextColor(red, green, blue)
	p.pdf.CellFormat(0, rowHeight+1, r.Grade.Label, "", 1, "L", false, 0, "")
	p.pdf.SetTextColor(0, 0, 0)

	p.font(10)
	if r.Grade.Description != "" {
		p.pdf.MultiCell(0, 6, r.Grade.Description, "", "L", false)
	}
	p.pdf.Ln(1)
	p.note("醫師建議", r.DoctorNote)
	p.note("護理備註", r.NurseNote)

	if len(r.Grade.Actions) > 0 {
		p.pdf.CellFormat(0, rowHeight, "後續處置", "", 1, "L", false, 0, "")
		for i, a := range r.Grade.Actions {
			p.pdf.CellFormat(0, 6, fmt.Sprintf("%d. %s", i+1, a), "", 1, "L", false, 0, "")
		}
	}
}

func (p *pdfWriter) note(label, text string) {
	p.pdf.SetFillColor(labelFill[0], labelFill[1], labelFill[2])
	p.pdf.CellFormat(0, rowHeight, label, "1", 1, "L", true, 0, "")
	p.pdf.MultiCell(0, 6, orDash(text), "1", "L", false)
	p.pdf.Ln(1)
}

// isTrueType checks the sfnt version tag. OpenType CFF fonts and font
// collections cannot be embedded.
func isTrueType(b []byte) bool {
	if len(b) < 12 {
		return false
	}
	tag := string(b[:4])
	return tag == "\x00\x01\x00\x00" || tag == "true"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// hexColor parses "#rrggbb". Anything else is black.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(uint8(v >> 16)), int(uint8(v >> 8)), int(uint8(v))
}
