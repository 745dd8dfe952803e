package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

func testPeriod() model.Period {
	d := func(m time.Month, day int) time.Time { return time.Date(2025, m, day, 0, 0, 0, 0, time.UTC) }
	return model.Period{PriorStart: d(6, 1), PriorEnd: d(6, 30), NextStart: d(7, 1), AsOf: d(7, 15)}
}

func okSummary(id string) model.RangeSummary {
	return model.RangeSummary{
		IndexID:     id,
		PriorHigh:   decimal.RequireFromString("25669.35"),
		PriorLow:    decimal.RequireFromString("24473"),
		NextOpen:    decimal.NewNullDecimal(decimal.RequireFromString("25715.2")),
		OpenStatus:  model.AboveRange,
		TouchedHigh: true,
	}
}

func readCSV(t *testing.T, b *model.Batch) [][]string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, b); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv back: %v", err)
	}
	return rows
}

func TestFileName(t *testing.T) {
	if got := FileName("NIFTY", testPeriod(), "csv"); got != "nifty_june_july_analysis.csv" {
		t.Errorf("unexpected file name %q", got)
	}
}

func TestWriteCSV_ColumnsAndYesNo(t *testing.T) {
	b := &model.Batch{Period: testPeriod(), Summaries: []model.RangeSummary{okSummary("NIFTY 50")}}
	rows := readCSV(t, b)

	want := "Index,June High,June Low,July Open,Open Status,Touched June High,Touched June Low"
	if got := strings.Join(rows[0], ","); got != want {
		t.Errorf("header:\n got %s\nwant %s", got, want)
	}
	wantRow := "NIFTY 50,25669.35,24473,25715.2,Above June High,Yes,No"
	if got := strings.Join(rows[1], ","); got != wantRow {
		t.Errorf("row:\n got %s\nwant %s", got, wantRow)
	}
}

func TestWriteCSV_ErrorColumnOnlyOnFailure(t *testing.T) {
	missing := okSummary("NIFTY IT")
	missing.NextOpen = decimal.NullDecimal{}
	missing.OpenStatus = model.DataMissing
	missing.TouchedHigh = false

	b := &model.Batch{Period: testPeriod(), Summaries: []model.RangeSummary{
		okSummary("NIFTY 50"),
		{IndexID: "NIFTY AUTO", Error: "fetch prior window: timeout"},
		missing,
	}}
	rows := readCSV(t, b)
	if len(rows[0]) != 8 || rows[0][7] != "Error" {
		t.Fatalf("expected trailing Error column, got %v", rows[0])
	}
	failed := rows[2]
	if failed[0] != "NIFTY AUTO" || failed[7] != "fetch prior window: timeout" {
		t.Errorf("unexpected error row %v", failed)
	}
	for i := 1; i < 7; i++ {
		if failed[i] != "" {
			t.Errorf("expected empty cell %d on error row, got %q", i, failed[i])
		}
	}
	if rows[3][3] != "" || rows[3][4] != "Data Missing" {
		t.Errorf("unexpected data-missing row %v", rows[3])
	}
	if rows[1][7] != "" {
		t.Errorf("expected empty error cell on a healthy row, got %q", rows[1][7])
	}
}

func TestWriteParquet(t *testing.T) {
	b := &model.Batch{Period: testPeriod(), Summaries: []model.RangeSummary{
		okSummary("NIFTY 50"),
		{IndexID: "NIFTY AUTO", Error: "boom"},
	}}
	var buf bytes.Buffer
	if err := WriteParquet(&buf, b); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	rows, err := parquet.Read[SummaryRecord](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].PriorHigh == nil || *rows[0].PriorHigh != 25669.35 || rows[0].OpenStatus != "Above June High" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].PriorHigh != nil || rows[1].NextOpen != nil || rows[1].Error != "boom" {
		t.Errorf("unexpected error row %+v", rows[1])
	}
}
