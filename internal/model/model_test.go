package model

import (
	"testing"
	"time"
)

func TestValidateSeries(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	good := []Candle{
		{TS: base},
		{TS: base.Add(5 * time.Minute)},
		{TS: base.Add(10 * time.Minute)},
	}
	if err := ValidateSeries(good); err != nil {
		t.Errorf("valid series rejected: %v", err)
	}

	dup := []Candle{{TS: base}, {TS: base}}
	if err := ValidateSeries(dup); err == nil {
		t.Error("duplicate timestamps accepted")
	}

	backwards := []Candle{{TS: base.Add(time.Minute)}, {TS: base}}
	if err := ValidateSeries(backwards); err == nil {
		t.Error("decreasing timestamps accepted")
	}

	if err := ValidateSeries(nil); err != nil {
		t.Errorf("empty series rejected: %v", err)
	}
}

func TestPositionShouldExit(t *testing.T) {
	pos := Position{EntryPrice: 95, StopLoss: 93.1, TakeProfit: 99.75, Size: 1}

	cases := []struct {
		price float64
		want  bool
	}{
		{95, false},
		{93.2, false},
		{93.1, true}, // at the stop, inclusive
		{90, true},
		{99.75, true}, // at the target, inclusive
		{101, true},
	}
	for _, tc := range cases {
		if got := pos.ShouldExit(tc.price); got != tc.want {
			t.Errorf("ShouldExit(%f) = %v, want %v", tc.price, got, tc.want)
		}
	}
}

func TestPositionHoldingMinutes(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pos := Position{EntryTime: entry}
	if got := pos.HoldingMinutes(entry.Add(35 * time.Minute)); got != 35 {
		t.Errorf("HoldingMinutes = %d, want 35", got)
	}
	if got := pos.HoldingMinutes(entry.Add(90 * time.Second)); got != 1 {
		t.Errorf("HoldingMinutes = %d, want 1 (whole minutes)", got)
	}
}

func TestTradeRecordDurationString(t *testing.T) {
	rec := TradeRecord{HasExit: true, DurationMin: 35}
	if got := rec.DurationString(); got != "35min" {
		t.Errorf("DurationString = %q, want %q", got, "35min")
	}
	rec = TradeRecord{}
	if got := rec.DurationString(); got != "" {
		t.Errorf("DurationString = %q for entry row, want empty", got)
	}
}

func TestCloses(t *testing.T) {
	candles := []Candle{{Close: 1.5}, {Close: 2.5}, {Close: 3.5}}
	got := Closes(candles)
	want := []float64{1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Closes[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}
