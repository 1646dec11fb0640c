package report

import (
	"fmt"
	"html/template"
	"io"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"dash": orDash,
	"inc":  func(i int) int { return i + 1 },
	"list": func(v ...interface{}) []interface{} { return v },
}).Parse(`<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.SubjectName}}</title>
<style>
  @page { size: A4; margin: 15mm; }
  body { font-family: "Noto Sans TC", "Microsoft JhengHei", sans-serif; font-size: 11pt; color: #111; }
  h1 { text-align: center; font-size: 18pt; margin: 0 0 4px; }
  .clinic { text-align: center; margin: 0 0 12px; }
  h2 { font-size: 13pt; border-bottom: 1px solid #333; margin: 16px 0 6px; }
  h3 { font-size: 11pt; margin: 10px 0 4px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #999; padding: 3px 6px; text-align: left; }
  th { background: #f0f4f8; }
  .fields th { width: 18%; }
  .abnormal { color: #dc2626; font-weight: bold; }
  .reasons span { margin-right: 24px; }
  .note { white-space: pre-wrap; min-height: 2em; }
  footer { margin-top: 16px; font-size: 8pt; text-align: center; color: #666; }
  @media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Clinic}}<p class="clinic">{{.}}</p>{{end}}

<h2>{{index .Sections 0}}</h2>
<table class="fields">
{{range .Demographics}}<tr><th>{{.Label}}</th><td>{{dash .Value}}</td></tr>
{{end}}</table>

<h2>{{index .Sections 1}}</h2>
<table class="fields">
{{range .Exposure}}<tr><th>{{.Label}}</th><td>{{dash .Value}}</td></tr>
{{end}}</table>

<h2>{{index .Sections 2}}</h2>
<p class="reasons">{{range .Reasons}}<span>{{if .Checked}}&#9745;{{else}}&#9744;{{end}} {{.Label}}</span>{{end}}</p>

<h2>{{index .Sections 3}}</h2>
{{template "results" (list "基本檢查項目" .Basic)}}
{{template "results" (list "特殊檢查項目" .Special)}}

<h2>{{index .Sections 4}}</h2>
<p style="color: {{.Grade.Color}}"><strong>{{.Grade.Label}}</strong></p>
{{with .Grade.Description}}<p>{{.}}</p>{{end}}
<h3>醫師建議</h3>
<p class="note">{{dash .DoctorNote}}</p>
<h3>護理備註</h3>
<p class="note">{{dash .NurseNote}}</p>
{{with .Grade.Actions}}<h3>後續處置</h3>
<ol>{{range .}}<li>{{.}}</li>{{end}}</ol>{{end}}

<footer>{{.GeneratedAt.Format "2006-01-02 15:04"}}</footer>
<script>window.addEventListener("load", function () { window.print(); });</script>
</body>
</html>
{{define "results"}}{{$caption := index . 0}}{{$rows := index . 1}}{{if $rows}}
<h3>{{$caption}}</h3>
<table>
<tr><th>#</th><th>項目</th><th>結果</th><th>單位</th><th>參考值</th><th>判定</th></tr>
{{range $i, $r := $rows}}<tr{{if $r.Abnormal}} class="abnormal"{{end}}><td>{{inc $i}}</td><td>{{$r.Label}}</td><td>{{dash $r.Value}}</td><td>{{$r.Unit}}</td><td>{{$r.Reference}}</td><td>{{if $r.Abnormal}}異常{{else if $r.Value}}正常{{else}}-{{end}}</td></tr>
{{end}}</table>{{end}}{{end}}`))

// RenderHTML writes r as a print-ready HTML page that opens the browser's
// print dialog on load.
func (s *Service) RenderHTML(r *Report, w io.Writer) error {
	if err := htmlReport.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report html: %w", err)
	}
	s.rendered(string(FormatHTML))
	return nil
}
