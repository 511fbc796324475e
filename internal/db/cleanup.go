package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Cleanup deletes fetch cycles older than the specified retention duration
func (db *DB) Cleanup(ctx context.Context, retention time.Duration) error {
	hours := int(retention.Hours())
	if hours < 1 {
		hours = 1
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM fetch_cycles WHERE datetime(finished_at_utc) < datetime('now', '-%d hours')", hours),
	)
	if err != nil {
		return fmt.Errorf("failed to cleanup fetch_cycles: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		log.Debug().Int64("deleted", rows).Int("hours", hours).Msg("Cleaned up fetch cycle log")
	}
	return nil
}

// Recorder writes cycles to the log and prunes it to the retention window
type Recorder struct {
	db        *DB
	retention time.Duration
}

// NewRecorder creates a recorder on top of an open database
func NewRecorder(database *DB, retention time.Duration) *Recorder {
	return &Recorder{db: database, retention: retention}
}

// RecordCycle appends r and applies retention
func (r *Recorder) RecordCycle(ctx context.Context, rec CycleRecord) error {
	if err := r.db.InsertCycle(ctx, rec); err != nil {
		return err
	}
	return r.db.Cleanup(ctx, r.retention)
}
