package journal

import (
	"errors"
	"testing"

	"papertrading-systemv1/internal/model"
)

type memLog struct {
	records []model.TradeRecord
	failing bool
	closed  bool
}

var errMemLog = errors.New("memlog append failed")

func (m *memLog) Append(rec model.TradeRecord) error {
	if m.failing {
		return errMemLog
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memLog) Load() ([]model.TradeRecord, error) { return m.records, nil }
func (m *memLog) Close() error                       { m.closed = true; return nil }

func TestTeeFansOutAppends(t *testing.T) {
	primary := &memLog{}
	mirror := &memLog{}
	tee := NewTee(primary, mirror)

	rec := model.TradeRecord{Action: "buy", Price: 95, PositionSize: 1}
	if err := tee.Append(rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if len(primary.records) != 1 || len(mirror.records) != 1 {
		t.Errorf("records = %d/%d, want 1/1", len(primary.records), len(mirror.records))
	}

	got, err := tee.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Load returned %d records, want 1", len(got))
	}
}

func TestTeeMirrorFailureKeepsPrimaryRow(t *testing.T) {
	primary := &memLog{}
	mirror := &memLog{failing: true}
	tee := NewTee(primary, mirror)

	err := tee.Append(model.TradeRecord{Action: "buy"})
	if !errors.Is(err, errMemLog) {
		t.Fatalf("expected mirror error, got %v", err)
	}
	if len(primary.records) != 1 {
		t.Errorf("primary has %d records, want 1", len(primary.records))
	}
}

func TestTeeCloseAll(t *testing.T) {
	primary := &memLog{}
	mirror := &memLog{}
	tee := NewTee(primary, mirror)
	if err := tee.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !primary.closed || !mirror.closed {
		t.Error("not all logs closed")
	}
}
