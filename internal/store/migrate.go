package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const runEventsTable = "run_events"

// Column names of run_events.
const (
	colID             = "id"
	colRunID          = "run_id"
	colStartedAt      = "started_at"
	colDurationMs     = "duration_ms"
	colEngine         = "engine"
	colQuestionSource = "question_source"
	colRecordsFile    = "records_file"
	colOutputPath     = "output_path"
	colTypes          = "types"
	colOutcome        = "outcome"
	colStatus         = "status"
	colWarnings       = "warnings"
	colErrorMessage   = "error_message"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		engine TEXT NOT NULL DEFAULT '',
		question_source TEXT NOT NULL,
		records_file TEXT NOT NULL,
		output_path TEXT NOT NULL,
		types TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		status TEXT NOT NULL,
		warnings TEXT NOT NULL DEFAULT '[]',
		error_message TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS run_events_started_at ON run_events (started_at)`,
	`CREATE INDEX IF NOT EXISTS run_events_outcome ON run_events (outcome)`,
}

// migrate creates the history tables if they are missing.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range schemaStatements {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
