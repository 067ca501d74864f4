package store

import (
	"context"
	"time"
)

// QueryOpts configures history queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int       // id > After
	Before  int       // id < Before
	From    time.Time // started_at >= From
	To      time.Time // started_at <= To
	Outcome string    // exact outcome kind, empty for any
}

// RunEventData captures one finished run.
type RunEventData struct {
	RunID          string
	StartedAt      time.Time
	DurationMs     int64
	Engine         string
	QuestionSource string
	RecordsFile    string
	OutputPath     string
	Types          string
	Outcome        string
	Status         string
	Warnings       []string
	ErrorMessage   string
}

// RunEventRecord is a stored run.
type RunEventRecord struct {
	ID int
	RunEventData
}

// OutcomeCount is the number of runs that ended with Outcome.
type OutcomeCount struct {
	Outcome string
	Runs    int
}

// RunRepo provides append and query access to run history.
type RunRepo interface {
	// AppendRun records a finished run.
	AppendRun(ctx context.Context, data RunEventData) error

	// QueryRuns returns runs newest first.
	QueryRuns(ctx context.Context, opts QueryOpts) ([]RunEventRecord, error)

	// GetRun returns the run with the given id, or nil if none exists.
	GetRun(ctx context.Context, id int) (*RunEventRecord, error)

	// OutcomeCounts groups all runs by outcome kind.
	OutcomeCounts(ctx context.Context) ([]OutcomeCount, error)
}
