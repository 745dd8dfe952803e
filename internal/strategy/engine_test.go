package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

func bars(hl ...float64) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(hl)/2)
	for i := 0; i+1 < len(hl); i += 2 {
		out = append(out, model.OHLCV{
			Time:  time.Date(2025, 6, 2+i/2, 0, 0, 0, 0, time.UTC),
			Open:  decimal.NewFromFloat((hl[i] + hl[i+1]) / 2),
			High:  decimal.NewFromFloat(hl[i]),
			Low:   decimal.NewFromFloat(hl[i+1]),
			Close: decimal.NewFromFloat((hl[i] + hl[i+1]) / 2),
		})
	}
	return out
}

func openDay(open float64) []model.OHLCV {
	return []model.OHLCV{{
		Time: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Open: decimal.NewFromFloat(open),
		High: decimal.NewFromFloat(open),
		Low:  decimal.NewFromFloat(open),
	}}
}

// prior window with high 100 and low 90
var juneBars = bars(95, 92, 100, 93, 97, 90)

func TestEvaluate_OpenScenarios(t *testing.T) {
	tests := []struct {
		name   string
		open   float64
		status model.OpenStatus
	}{
		{"above range", 105, model.AboveRange},
		{"below range", 85, model.BelowRange},
		{"within range", 95, model.WithinRange},
		{"open equals high", 100, model.WithinRange},
		{"open equals low", 90, model.WithinRange},
	}
	for _, tt := range tests {
		s, ok := Evaluate("NIFTY 50", juneBars, openDay(tt.open), nil)
		if !ok {
			t.Fatalf("%s: expected ok", tt.name)
		}
		if s.OpenStatus != tt.status {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.status, s.OpenStatus)
		}
		if !s.PriorHigh.Equal(decimal.NewFromInt(100)) || !s.PriorLow.Equal(decimal.NewFromInt(90)) {
			t.Errorf("%s: expected range 90-100, got %s-%s", tt.name, s.PriorLow, s.PriorHigh)
		}
		if !s.NextOpen.Valid || !s.NextOpen.Decimal.Equal(decimal.NewFromFloat(tt.open)) {
			t.Errorf("%s: expected next open %.1f, got %+v", tt.name, tt.open, s.NextOpen)
		}
	}
}

func TestEvaluate_MissingOpenStillTouches(t *testing.T) {
	s, ok := Evaluate("NIFTY IT", juneBars, nil, bars(101, 95, 99, 89))
	if !ok {
		t.Fatal("expected ok")
	}
	if s.OpenStatus != model.DataMissing {
		t.Errorf("expected DATA_MISSING, got %s", s.OpenStatus)
	}
	if s.NextOpen.Valid {
		t.Error("expected absent next open")
	}
	if !s.TouchedHigh || !s.TouchedLow {
		t.Errorf("expected both touches, got high=%v low=%v", s.TouchedHigh, s.TouchedLow)
	}
}

func TestEvaluate_TouchedHigh(t *testing.T) {
	s, _ := Evaluate("NIFTY AUTO", juneBars, openDay(95), bars(101, 94))
	if !s.TouchedHigh {
		t.Error("expected touched high for High=101 over prior high 100")
	}
	if s.TouchedLow {
		t.Error("did not expect touched low")
	}
}

func TestEvaluate_EmptyToDate(t *testing.T) {
	s, _ := Evaluate("NIFTY METAL", juneBars, openDay(95), nil)
	if s.TouchedHigh || s.TouchedLow {
		t.Errorf("empty to-date window must not touch, got high=%v low=%v", s.TouchedHigh, s.TouchedLow)
	}
}

func TestEvaluate_EmptyPriorSkipped(t *testing.T) {
	if _, ok := Evaluate("NIFTY REALTY", nil, openDay(95), bars(101, 94)); ok {
		t.Error("expected empty prior window to be skipped")
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	first, _ := Evaluate("NIFTY FMCG", juneBars, openDay(99), bars(99, 91))
	second, _ := Evaluate("NIFTY FMCG", juneBars, openDay(99), bars(99, 91))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical summaries, got %+v and %+v", first, second)
	}
}

func TestEvaluate_HighNeverBelowLow(t *testing.T) {
	windows := [][]model.OHLCV{
		bars(10, 10),
		bars(12, 8, 11, 9),
		bars(5, 1, 20, 19, 7, 3),
	}
	for i, w := range windows {
		s, ok := Evaluate("X", w, nil, nil)
		if !ok {
			t.Fatalf("window %d: expected ok", i)
		}
		if s.PriorHigh.LessThan(s.PriorLow) {
			t.Errorf("window %d: high %s below low %s", i, s.PriorHigh, s.PriorLow)
		}
	}
}

func TestFailed_ErrorOnly(t *testing.T) {
	s := Failed("NIFTY ENERGY", errors.New("yahoo: status 503"))
	if !s.Failed() {
		t.Fatal("expected failed summary")
	}
	if s.IndexID != "NIFTY ENERGY" || s.Error != "yahoo: status 503" {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !s.PriorHigh.IsZero() || !s.PriorLow.IsZero() || s.NextOpen.Valid ||
		s.OpenStatus != "" || s.TouchedHigh || s.TouchedLow {
		t.Errorf("error summary must not carry computed fields: %+v", s)
	}
}

func TestEvaluate_NeverCarriesError(t *testing.T) {
	s, _ := Evaluate("NIFTY 50", juneBars, openDay(95), nil)
	if s.Failed() {
		t.Errorf("computed summary must not carry an error: %q", s.Error)
	}
}
