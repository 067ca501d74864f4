// Package pipeline runs one quiz-performance report request end to end:
// validate paths, select question types, invoke the analysis engine and
// persist its report.
package pipeline

import (
	"time"

	"github.com/abhisek/qperformance/internal/qtype"
)

// Request is the input to a single run. It is passed by value and never
// mutated once a run starts.
type Request struct {
	// QuestionSource is a question document or a directory of them.
	QuestionSource string

	// RecordsFile is the QuizMachine records file.
	RecordsFile string

	// OutputPath is where the report is written. It must not exist.
	OutputPath string

	// Toggles selects the question types to report on.
	Toggles qtype.Toggles
}

// Kind discriminates run outcomes.
type Kind string

const (
	KindSuccess            Kind = "success"
	KindValidationFailure  Kind = "validation_failure"
	KindEngineFailure      Kind = "engine_failure"
	KindPersistenceFailure Kind = "persistence_failure"
)

// Status text shown for outcomes that do not carry their own message.
const (
	StatusSaved        = "Saved"
	StatusEngineFailed = "Error running analysis engine"
)

// Outcome is the terminal result of a run.
type Outcome struct {
	// RunID uniquely identifies the run.
	RunID string

	Kind Kind

	// Status is the short human-readable status line.
	Status string

	// Warnings are the engine's non-fatal warnings. Empty unless the
	// engine succeeded. A persistence failure still carries them.
	Warnings []string

	// Types are the codes sent to the engine (empty if the run failed
	// validation).
	Types qtype.Codes

	// Err is the underlying cause of a failure, for logs only.
	Err error

	StartedAt time.Time
	Duration  time.Duration
}

// OK reports whether the run produced a saved report.
func (o Outcome) OK() bool { return o.Kind == KindSuccess }

// State is a step of the run state machine.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSelecting
	StateInvoking
	StatePersisting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSelecting:
		return "selecting"
	case StateInvoking:
		return "invoking"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Observer is told about every state transition of a run.
type Observer func(runID string, from, to State)
