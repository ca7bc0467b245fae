package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/pkloom-cli/internal/analysis"
)

// Interactive writes an HTML page with a zoomable concentration-time chart
// and one boxplot per covariate. Every point carries a tooltip.
func Interactive(w io.Writer, in Input) error {
	page := components.NewPage()
	page.PageTitle = "pkloom: concentration-time report"
	page.AddCharts(concentrationChart(in))
	for _, cov := range covariates(in) {
		page.AddCharts(boxChart(cov))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render interactive report: %w", err)
	}
	return nil
}

func concentrationChart(in Input) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "960px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Concentration over time by subject",
			Subtitle: "color: dose (mg/kg, blue low → red high), symbol: sex (▲ M, ● F)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time [h]", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Concentration [mg/L]", Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	scale := newDoseScale(in.Subjects)
	series := subjectSeries(in.Rows)
	for _, s := range in.Subjects {
		pts := series[s.Subject]
		if len(pts) == 0 {
			continue
		}
		symbol := symbolFor(s.Sex)
		data := make([]opts.LineData, len(pts))
		for i, pt := range pts {
			data[i] = opts.LineData{Value: []interface{}{pt.Time, pt.Conc}, Symbol: symbol, SymbolSize: 8}
		}
		col := scale.hex(s.DoseMgPerKg)
		name := fmt.Sprintf("Subject %s (%s, %.2f mg/kg)", s.Subject, sexKey(s.Sex), s.DoseMgPerKg)
		line.AddSeries(name, data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: col}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: col}),
		)
	}
	return line
}

func boxChart(cov covariate) *charts.BoxPlot {
	bp := charts.NewBoxPlot()
	bp.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "480px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: cov.Name + " by sex"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithYAxisOpts(opts.YAxis{Name: cov.Label()}),
	)
	keys := make([]string, 0, len(cov.Groups))
	data := make([]opts.BoxPlotData, 0, len(cov.Groups))
	for _, g := range cov.Groups {
		s := analysis.Describe(g.Values, analysis.DefaultAlpha)
		if s.Count == 0 {
			continue
		}
		keys = append(keys, g.Key)
		data = append(data, opts.BoxPlotData{Name: g.Key, Value: []float64{s.Min, s.Q1, s.Median, s.Q3, s.Max}})
	}
	bp.SetXAxis(keys).AddSeries(cov.Name, data)
	return bp
}
