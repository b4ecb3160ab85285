package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"papertrading-systemv1/internal/model"
)

func tradeTime(s string) time.Time {
	ts, err := time.ParseInLocation(model.TradeTimeFormat, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestCSVCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	if _, err := NewCSV(path); err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	want := "timestamp,action,price,stop_loss,take_profit,position_size,exit_price,duration\n"
	if string(data) != want {
		t.Errorf("header = %q, want %q", data, want)
	}
}

func TestCSVReopenKeepsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	l, err := NewCSV(path)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	rec := model.TradeRecord{
		Timestamp:    tradeTime("2024-03-01 10:00:00"),
		Action:       "buy",
		Price:        95,
		StopLoss:     93.1,
		TakeProfit:   99.75,
		PositionSize: 1,
	}
	if err := l.Append(rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// Reopening an existing file must not rewrite the header or drop rows.
	l2, err := NewCSV(path)
	if err != nil {
		t.Fatalf("NewCSV reopen failed: %v", err)
	}
	records, err := l2.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after reopen, want 1", len(records))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if strings.Count(string(data), "timestamp,") != 1 {
		t.Error("header written more than once")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	l, err := NewCSV(path)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}

	recs := []model.TradeRecord{
		{
			Timestamp:    tradeTime("2024-03-01 10:00:00"),
			Action:       "buy",
			Price:        95,
			StopLoss:     93.1,
			TakeProfit:   99.75,
			PositionSize: 1,
		},
		{
			Timestamp:    tradeTime("2024-03-01 10:35:00"),
			Action:       "sell",
			Price:        99.8,
			StopLoss:     93.1,
			TakeProfit:   99.75,
			PositionSize: 1,
			ExitPrice:    99.8,
			DurationMin:  35,
			HasExit:      true,
		},
		{
			Timestamp:    tradeTime("2024-03-01 11:00:00"),
			Action:       "sell",
			Price:        101.5,
			PositionSize: 0,
		},
	}
	for _, rec := range recs {
		if err := l.Append(rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("got %d records, want %d", len(got), len(recs))
	}
	for i, rec := range recs {
		if got[i] != rec {
			t.Errorf("record %d = %+v, want %+v", i, got[i], rec)
		}
	}
}

func TestCSVExitColumnsEmptyOnEntryRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	l, err := NewCSV(path)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	if err := l.Append(model.TradeRecord{
		Timestamp:    tradeTime("2024-03-01 10:00:00"),
		Action:       "buy",
		Price:        95,
		StopLoss:     93.1,
		TakeProfit:   99.75,
		PositionSize: 1,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row", len(lines))
	}
	if want := "2024-03-01 10:00:00,buy,95,93.1,99.75,1,,"; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}
