// Package engine defines the contract of the analysis engine that turns
// question sets and QuizMachine records into a performance report, plus
// the adapters used to reach it.
package engine

import (
	"context"

	"github.com/abhisek/qperformance/internal/qtype"
)

// Engine computes a performance report.
type Engine interface {
	// Analyze runs the analysis synchronously. On success it returns the
	// non-fatal warnings and the report payload. Errors are opaque to
	// callers.
	Analyze(ctx context.Context, in Input) (*Result, error)

	// Name identifies the engine in logs and run history.
	Name() string
}

// Input is what the engine is asked to analyze.
type Input struct {
	// QuestionSource is a question document or a directory of them.
	QuestionSource string

	// RecordsFile is the QuizMachine records file.
	RecordsFile string

	// Detail asks for per-question detail in the report.
	Detail bool

	// Types restricts the report to these codes, in index order.
	Types qtype.Codes
}

// Result is a successful analysis.
type Result struct {
	// Warnings are human-readable notes such as malformed records,
	// unmatched question references or skipped files.
	Warnings []string

	// Report is written to the output file byte-for-byte.
	Report string
}
