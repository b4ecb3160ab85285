package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"papertrading-systemv1/internal/model"
)

// csvHeader is the fixed column schema of the trade log file.
var csvHeader = []string{
	"timestamp", "action", "price", "stop_loss", "take_profit",
	"position_size", "exit_price", "duration",
}

// CSVLog is the flat-file trade log. The backing file is created with its
// header row on first use; rows are only ever appended.
type CSVLog struct {
	path string
}

// NewCSV creates a CSV trade log at path, writing the header row if the
// file does not exist yet.
func NewCSV(path string) (*CSVLog, error) {
	l := &CSVLog{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("trade log create: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("trade log header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("trade log header flush: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("trade log close: %w", err)
		}
	}
	return l, nil
}

// Append writes one trade row. The file is opened per append so a crash
// between ticks never holds the log open with unflushed rows.
func (l *CSVLog) Append(rec model.TradeRecord) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("trade log open: %w", err)
	}
	defer f.Close()

	exitPrice := ""
	if rec.HasExit {
		exitPrice = f64(rec.ExitPrice)
	}

	w := csv.NewWriter(f)
	err = w.Write([]string{
		rec.Timestamp.Format(model.TradeTimeFormat),
		rec.Action,
		f64(rec.Price),
		f64(rec.StopLoss),
		f64(rec.TakeProfit),
		strconv.FormatInt(rec.PositionSize, 10),
		exitPrice,
		rec.DurationString(),
	})
	if err != nil {
		return fmt.Errorf("trade log write: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("trade log flush: %w", err)
	}
	return nil
}

// Load returns all rows in insertion order.
func (l *CSVLog) Load() ([]model.TradeRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("trade log open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	var records []model.TradeRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trade log read: %w", err)
		}
		if first {
			first = false
			if row[0] == "timestamp" {
				continue
			}
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close is a no-op: the file is only held open during Append/Load.
func (l *CSVLog) Close() error { return nil }

func parseRow(row []string) (model.TradeRecord, error) {
	var rec model.TradeRecord
	ts, err := time.ParseInLocation(model.TradeTimeFormat, row[0], time.UTC)
	if err != nil {
		return rec, fmt.Errorf("trade log timestamp %q: %w", row[0], err)
	}
	rec.Timestamp = ts
	rec.Action = row[1]
	if rec.Price, err = strconv.ParseFloat(row[2], 64); err != nil {
		return rec, fmt.Errorf("trade log price %q: %w", row[2], err)
	}
	if rec.StopLoss, err = strconv.ParseFloat(row[3], 64); err != nil {
		return rec, fmt.Errorf("trade log stop_loss %q: %w", row[3], err)
	}
	if rec.TakeProfit, err = strconv.ParseFloat(row[4], 64); err != nil {
		return rec, fmt.Errorf("trade log take_profit %q: %w", row[4], err)
	}
	if rec.PositionSize, err = strconv.ParseInt(row[5], 10, 64); err != nil {
		return rec, fmt.Errorf("trade log position_size %q: %w", row[5], err)
	}
	if row[6] != "" {
		if rec.ExitPrice, err = strconv.ParseFloat(row[6], 64); err != nil {
			return rec, fmt.Errorf("trade log exit_price %q: %w", row[6], err)
		}
		rec.HasExit = true
	}
	if row[7] != "" {
		var n int
		if _, err := fmt.Sscanf(row[7], "%dmin", &n); err != nil {
			return rec, fmt.Errorf("trade log duration %q: %w", row[7], err)
		}
		rec.DurationMin = n
	}
	return rec, nil
}

func f64(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
