package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists audit events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			portfolio_type TEXT,
			risk_tolerance TEXT,
			total_value    REAL,
			entries        INTEGER,
			fault          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_ts ON recommendations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS payment_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			attempt_id TEXT,
			outcome    TEXT,
			trigger_type TEXT,
			reason     TEXT,
			granted    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payment_events_ts ON payment_events(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Unix()
}

func (r *SQLiteRecorder) RecordRecommendation(evt *RecommendationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO recommendations
		(timestamp, source, portfolio_type, risk_tolerance, total_value, entries, fault)
		VALUES (?,?,?,?,?,?,?)`,
		stamp(evt.At), evt.Source, evt.PortfolioType, evt.RiskTolerance,
		evt.TotalValue, evt.Entries, evt.Fault,
	)
	return err
}

func (r *SQLiteRecorder) RecordPayment(evt *PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	granted := 0
	if evt.Granted {
		granted = 1
	}
	_, err := r.db.Exec(`INSERT INTO payment_events
		(timestamp, attempt_id, outcome, trigger_type, reason, granted)
		VALUES (?,?,?,?,?,?)`,
		stamp(evt.At), evt.AttemptID, evt.Outcome, evt.Trigger, evt.Reason, granted,
	)
	return err
}

// CountPayments returns the number of payment rows with the given outcome.
func (r *SQLiteRecorder) CountPayments(outcome string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM payment_events WHERE outcome = ?`, outcome).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
