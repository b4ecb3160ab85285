// Package journal persists executed paper trades.
//
// The CSV log is the contract-bearing store: a flat tabular file with a
// fixed header, append-only, single-writer. The SQLite journal mirrors the
// same rows for ad-hoc querying. Concurrent writers are not supported;
// callers serialize access externally (the trading loop is single-threaded).
package journal

import "papertrading-systemv1/internal/model"

// Tee fans every append out to multiple logs. Load and Close delegate to
// the first (primary) log for Load, and to all logs for Close.
type Tee struct {
	logs []model.TradeLog
}

// NewTee creates a Tee over the given logs. The first log is the primary
// store used by Load.
func NewTee(logs ...model.TradeLog) *Tee {
	return &Tee{logs: logs}
}

// Append writes the record to every log. The first failure is returned;
// a failed mirror write still leaves the primary row intact.
func (t *Tee) Append(rec model.TradeRecord) error {
	var firstErr error
	for _, l := range t.logs {
		if err := l.Append(rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Load returns all records from the primary log.
func (t *Tee) Load() ([]model.TradeRecord, error) {
	return t.logs[0].Load()
}

// Close closes every log, returning the first error encountered.
func (t *Tee) Close() error {
	var firstErr error
	for _, l := range t.logs {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
