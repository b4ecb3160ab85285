package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"papertrading-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLog mirrors trade rows into SQLite for analysis and audit.
type SQLiteLog struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite trade journal.
func NewSQLite(dbPath string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		ts             TEXT    NOT NULL,
		action         TEXT    NOT NULL,
		price          REAL    NOT NULL,
		stop_loss      REAL    NOT NULL,
		take_profit    REAL    NOT NULL,
		position_size  INTEGER NOT NULL,
		exit_price     REAL,
		duration_min   INTEGER,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts);
	CREATE INDEX IF NOT EXISTS idx_trades_action ON trades(action);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal sqlite schema: %w", err)
	}

	slog.Info("opened sqlite trade journal", "path", dbPath)
	return &SQLiteLog{db: db}, nil
}

// Append inserts one trade row.
func (j *SQLiteLog) Append(rec model.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var exitPrice, durationMin interface{}
	if rec.HasExit {
		exitPrice = rec.ExitPrice
		durationMin = rec.DurationMin
	}

	_, err := j.db.Exec(
		`INSERT INTO trades (ts, action, price, stop_loss, take_profit, position_size, exit_price, duration_min)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(model.TradeTimeFormat),
		rec.Action,
		rec.Price,
		rec.StopLoss,
		rec.TakeProfit,
		rec.PositionSize,
		exitPrice,
		durationMin,
	)
	if err != nil {
		return fmt.Errorf("journal sqlite insert: %w", err)
	}
	return nil
}

// Load returns all trade rows in insertion order.
func (j *SQLiteLog) Load() ([]model.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT ts, action, price, stop_loss, take_profit, position_size, exit_price, duration_min
		 FROM trades ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("journal sqlite query: %w", err)
	}
	defer rows.Close()

	var records []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		var ts string
		var exitPrice sql.NullFloat64
		var durationMin sql.NullInt64
		if err := rows.Scan(&ts, &rec.Action, &rec.Price, &rec.StopLoss,
			&rec.TakeProfit, &rec.PositionSize, &exitPrice, &durationMin); err != nil {
			return nil, fmt.Errorf("journal sqlite scan: %w", err)
		}
		rec.Timestamp, err = time.ParseInLocation(model.TradeTimeFormat, ts, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("journal sqlite timestamp %q: %w", ts, err)
		}
		if exitPrice.Valid {
			rec.ExitPrice = exitPrice.Float64
			rec.HasExit = true
		}
		if durationMin.Valid {
			rec.DurationMin = int(durationMin.Int64)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the journal database.
func (j *SQLiteLog) Close() error {
	return j.db.Close()
}
