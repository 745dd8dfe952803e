package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

func testBatch() *model.Batch {
	d := func(m time.Month, day int) time.Time { return time.Date(2025, m, day, 0, 0, 0, 0, time.UTC) }
	return &model.Batch{
		Period: model.Period{PriorStart: d(6, 1), PriorEnd: d(6, 30), NextStart: d(7, 1), AsOf: d(7, 15)},
		Summaries: []model.RangeSummary{
			{
				IndexID:   "NIFTY 50",
				PriorHigh: decimal.NewFromInt(25669),
				PriorLow:  decimal.NewFromInt(24473),
				NextOpen:  decimal.NewNullDecimal(decimal.NewFromInt(25715)),
			},
			{IndexID: "NIFTY IT", PriorHigh: decimal.NewFromInt(39000), PriorLow: decimal.NewFromInt(37000)},
			{IndexID: "NIFTY AUTO", Error: "timeout"},
		},
	}
}

func TestPoints(t *testing.T) {
	points := Points(testBatch())
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].NextOpen == nil || *points[0].NextOpen != 25715 {
		t.Errorf("unexpected first point %+v", points[0])
	}
	if points[1].PriorHigh == nil || points[1].NextOpen != nil {
		t.Errorf("expected missing open only, got %+v", points[1])
	}
	if points[2].PriorHigh != nil || points[2].PriorLow != nil || points[2].NextOpen != nil {
		t.Errorf("expected failed index without values, got %+v", points[2])
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "Nifty June-July Analysis", testBatch()); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"June High", "June Low", "July Open", "skyblue", "orange", "green", "NIFTY AUTO"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered chart missing %q", want)
		}
	}
}
