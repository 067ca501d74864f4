package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type runRepo struct {
	drv *entsql.Driver
}

var runColumns = []string{
	colID, colRunID, colStartedAt, colDurationMs, colEngine,
	colQuestionSource, colRecordsFile, colOutputPath, colTypes,
	colOutcome, colStatus, colWarnings, colErrorMessage,
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *runRepo) AppendRun(ctx context.Context, data RunEventData) error {
	warnings := data.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	query, args := builder().Insert(runEventsTable).
		Columns(
			colRunID, colStartedAt, colDurationMs, colEngine,
			colQuestionSource, colRecordsFile, colOutputPath, colTypes,
			colOutcome, colStatus, colWarnings, colErrorMessage,
		).
		Values(
			data.RunID, data.StartedAt.UTC().UnixMilli(), data.DurationMs, data.Engine,
			data.QuestionSource, data.RecordsFile, data.OutputPath, data.Types,
			data.Outcome, data.Status, string(warningsJSON), data.ErrorMessage,
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save run event: %w", err)
	}
	return nil
}

func (r *runRepo) QueryRuns(ctx context.Context, opts QueryOpts) ([]RunEventRecord, error) {
	sel := builder().Select(runColumns...).From(entsql.Table(runEventsTable))

	if opts.After > 0 {
		sel.Where(entsql.GT(colID, opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT(colID, opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(colStartedAt, opts.From.UTC().UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(colStartedAt, opts.To.UTC().UnixMilli()))
	}
	if opts.Outcome != "" {
		sel.Where(entsql.EQ(colOutcome, opts.Outcome))
	}
	sel.OrderBy(entsql.Desc(colID))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	var records []RunEventRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run events: %w", err)
	}
	return records, nil
}

func (r *runRepo) GetRun(ctx context.Context, id int) (*RunEventRecord, error) {
	query, args := builder().Select(runColumns...).
		From(entsql.Table(runEventsTable)).
		Where(entsql.EQ(colID, id)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("get run event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get run event: %w", err)
		}
		return nil, nil
	}
	return scanRun(rows)
}

func (r *runRepo) OutcomeCounts(ctx context.Context) ([]OutcomeCount, error) {
	query, args := builder().Select(colOutcome, entsql.Count("*")).
		From(entsql.Table(runEventsTable)).
		GroupBy(colOutcome).
		OrderBy(colOutcome).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("count run outcomes: %w", err)
	}
	defer rows.Close()

	var counts []OutcomeCount
	for rows.Next() {
		var oc OutcomeCount
		if err := rows.Scan(&oc.Outcome, &oc.Runs); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts = append(counts, oc)
	}
	return counts, rows.Err()
}

func scanRun(rows *entsql.Rows) (*RunEventRecord, error) {
	var (
		rec          RunEventRecord
		startedAt    int64
		warningsJSON string
	)
	err := rows.Scan(
		&rec.ID, &rec.RunID, &startedAt, &rec.DurationMs, &rec.Engine,
		&rec.QuestionSource, &rec.RecordsFile, &rec.OutputPath, &rec.Types,
		&rec.Outcome, &rec.Status, &warningsJSON, &rec.ErrorMessage,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run event: %w", err)
	}
	rec.StartedAt = time.UnixMilli(startedAt).UTC()
	if err := json.Unmarshal([]byte(warningsJSON), &rec.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings for run %d: %w", rec.ID, err)
	}
	return &rec, nil
}
