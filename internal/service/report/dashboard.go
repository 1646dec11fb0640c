package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jwalitptl/shc-api/internal/model"
)

// Dashboard writes an HTML page holding a stacked bar chart of the grade
// distribution of each hazard, one series per management grade.
func (s *Service) Dashboard(summaries []model.HazardSummary, w io.Writer) error {
	xAxis := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		xAxis = append(xAxis, sum.HazardName)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "特殊健康檢查管理分級統計",
			Width:     "100%",
			Height:    "480px",
			ChartID:   "grade_distribution",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "各作業別健康管理分級分布",
			Subtitle: fmt.Sprintf("共 %d 名受檢者", total(summaries)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate:      30,
				HideOverlap: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:        "人數",
			MinInterval: 1,
		}),
	)

	bar.SetXAxis(xAxis)
	for _, g := range s.reg.Grades() {
		data := make([]opts.BarData, 0, len(summaries))
		for _, sum := range summaries {
			data = append(data, opts.BarData{Value: sum.ByGrade()[g.Grade-1]})
		}
		bar.AddSeries(g.Label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: g.Color}),
		)
	}
	bar.SetSeriesOptions(
		charts.WithBarChartOpts(opts.BarChart{Stack: "grade"}),
	)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render dashboard chart: %w", err)
	}
	s.rendered("chart")
	return nil
}

func total(summaries []model.HazardSummary) int {
	n := 0
	for _, sum := range summaries {
		n += sum.Total
	}
	return n
}
