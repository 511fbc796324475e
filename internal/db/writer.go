package db

import (
	"context"
	"fmt"
	"time"
)

// CycleRecord is one finished fetch cycle as written to the log
type CycleRecord struct {
	CycleID          string
	StartedAt        time.Time
	FinishedAt       time.Time
	Attempts         int
	Outcome          string
	SecondsRemaining *int
	RunRef           string
	Platform         string
	Error            string
}

// InsertCycle appends a fetch cycle to the log
func (db *DB) InsertCycle(ctx context.Context, r CycleRecord) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO fetch_cycles (
			cycle_id, started_at_utc, finished_at_utc, attempts, outcome,
			seconds_remaining, run_ref, platform, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.CycleID,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Attempts,
		r.Outcome,
		r.SecondsRemaining,
		nullable(r.RunRef),
		nullable(r.Platform),
		nullable(r.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch cycle: %w", err)
	}
	return nil
}

// CountCycles returns the number of logged cycles with the given outcome,
// or all cycles when outcome is empty
func (db *DB) CountCycles(ctx context.Context, outcome string) (int, error) {
	query := `SELECT COUNT(*) FROM fetch_cycles`
	args := []any{}
	if outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, outcome)
	}

	var count int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
