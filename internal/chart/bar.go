// Package chart draws the grouped bar comparison of prior range and next open.
package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"IndexRange/internal/model"
)

const (
	highColor = "skyblue"
	lowColor  = "orange"
	openColor = "green"
)

// Point is one index's chart values. Nil means no bar.
type Point struct {
	Index     string   `json:"index"`
	PriorHigh *float64 `json:"priorHigh"`
	PriorLow  *float64 `json:"priorLow"`
	NextOpen  *float64 `json:"nextOpen"`
}

// Points extracts chart values in batch order. Failed indices keep their
// slot on the axis with every value nil.
func Points(b *model.Batch) []Point {
	out := make([]Point, 0, len(b.Summaries))
	for _, s := range b.Summaries {
		p := Point{Index: s.IndexID}
		if !s.Failed() {
			high, _ := s.PriorHigh.Float64()
			low, _ := s.PriorLow.Float64()
			p.PriorHigh, p.PriorLow = &high, &low
			if s.NextOpen.Valid {
				open, _ := s.NextOpen.Decimal.Float64()
				p.NextOpen = &open
			}
		}
		out = append(out, p)
	}
	return out
}

// NewBar builds the grouped bar chart for the batch.
func NewBar(title string, b *model.Batch) *charts.Bar {
	points := Points(b)
	prior, next := b.Period.PriorLabel(), b.Period.NextLabel()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "560px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    prior + " High/Low vs " + next + " Open",
			Subtitle: "as of " + b.Period.AsOf.Format(model.DateLayout),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price", Scale: true}),
	)

	names := make([]string, len(points))
	highs := make([]opts.BarData, len(points))
	lows := make([]opts.BarData, len(points))
	opens := make([]opts.BarData, len(points))
	for i, p := range points {
		names[i] = p.Index
		highs[i] = barValue(p.PriorHigh)
		lows[i] = barValue(p.PriorLow)
		opens[i] = barValue(p.NextOpen)
	}

	bar.SetXAxis(names).
		AddSeries(prior+" High", highs, charts.WithItemStyleOpts(opts.ItemStyle{Color: highColor})).
		AddSeries(prior+" Low", lows, charts.WithItemStyleOpts(opts.ItemStyle{Color: lowColor})).
		AddSeries(next+" Open", opens, charts.WithItemStyleOpts(opts.ItemStyle{Color: openColor}))
	return bar
}

// Render writes the chart as a standalone HTML page.
func Render(w io.Writer, title string, b *model.Batch) error {
	return NewBar(title, b).Render(w)
}

func barValue(v *float64) opts.BarData {
	if v == nil {
		return opts.BarData{Value: nil}
	}
	return opts.BarData{Value: *v}
}
