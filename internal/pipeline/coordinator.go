package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/qperformance/internal/engine"
	"github.com/abhisek/qperformance/internal/pathcheck"
	"github.com/abhisek/qperformance/internal/qtype"
	"github.com/abhisek/qperformance/internal/report"
	"github.com/abhisek/qperformance/internal/store"
)

// Options configures a Coordinator.
type Options struct {
	// Engine is required.
	Engine engine.Engine

	// Validator defaults to pathcheck.New(Logger).
	Validator *pathcheck.Validator

	// Writer defaults to a zero report.Writer.
	Writer *report.Writer

	// History, when set, receives every finished run. Failing to record
	// never changes the outcome.
	History store.RunRepo

	// Observer, when set, is called on every state transition.
	Observer Observer

	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Coordinator composes validation, type selection, engine invocation and
// report persistence. Runs on one Coordinator never overlap.
type Coordinator struct {
	mu sync.Mutex

	engine    engine.Engine
	validator *pathcheck.Validator
	writer    *report.Writer
	history   store.RunRepo
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.Engine == nil {
		return nil, errors.New("pipeline: engine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Coordinator{
		engine:    opts.Engine,
		validator: opts.Validator,
		writer:    opts.Writer,
		history:   opts.History,
		observer:  opts.Observer,
		logger:    logger.With(slog.String("component", "pipeline")),
		now:       opts.Now,
	}
	if c.validator == nil {
		c.validator = pathcheck.New(logger)
	}
	if c.writer == nil {
		c.writer = &report.Writer{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// run tracks the state of one execution.
type run struct {
	c     *Coordinator
	id    string
	state State
}

func (r *run) enter(next State) {
	prev := r.state
	r.state = next
	r.c.logger.Debug("run state", "run_id", r.id, "from", prev.String(), "to", next.String())
	if r.c.observer != nil {
		r.c.observer(r.id, prev, next)
	}
}

// Run executes one request from Idle to Done and returns its outcome.
// Nothing from a previous run leaks into the result.
func (c *Coordinator) Run(ctx context.Context, req Request) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &run{c: c, id: uuid.NewString(), state: StateIdle}
	start := c.now()

	out := r.execute(ctx, req)
	out.RunID = r.id
	out.StartedAt = start
	out.Duration = c.now().Sub(start)
	r.enter(StateDone)

	c.logOutcome(req, out)
	c.record(ctx, req, out)
	return out
}

func (r *run) execute(ctx context.Context, req Request) Outcome {
	c := r.c

	r.enter(StateValidating)
	if err := c.validator.Validate(req.QuestionSource, req.RecordsFile, req.OutputPath); err != nil {
		msg := err.Error()
		var ve *pathcheck.ValidationError
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		return Outcome{Kind: KindValidationFailure, Status: msg, Err: err}
	}

	r.enter(StateSelecting)
	types := qtype.Select(req.Toggles)

	r.enter(StateInvoking)
	res, err := c.invoke(ctx, req, types)
	if err != nil {
		return Outcome{Kind: KindEngineFailure, Status: StatusEngineFailed, Types: types, Err: err}
	}
	warnings := append([]string{}, res.Warnings...)

	r.enter(StatePersisting)
	if err := c.writer.Write(req.OutputPath, res.Report); err != nil {
		msg := err.Error()
		var pe *report.PersistenceError
		if errors.As(err, &pe) {
			msg = pe.Message()
		}
		return Outcome{Kind: KindPersistenceFailure, Status: msg, Warnings: warnings, Types: types, Err: err}
	}

	return Outcome{Kind: KindSuccess, Status: StatusSaved, Warnings: warnings, Types: types}
}

func (c *Coordinator) logOutcome(req Request, out Outcome) {
	attrs := []any{
		"run_id", out.RunID,
		"outcome", string(out.Kind),
		"types", out.Types.String(),
		"warnings", len(out.Warnings),
		"elapsed", out.Duration,
	}
	if out.OK() {
		c.logger.Info("report saved", append(attrs, "output", req.OutputPath)...)
		return
	}
	c.logger.Warn("run failed", append(attrs, "status", out.Status, "error", out.Err)...)
}

// record appends the outcome to history. Errors are logged, not returned.
func (c *Coordinator) record(ctx context.Context, req Request, out Outcome) {
	if c.history == nil {
		return
	}
	data := store.RunEventData{
		RunID:          out.RunID,
		StartedAt:      out.StartedAt,
		DurationMs:     out.Duration.Milliseconds(),
		Engine:         c.engine.Name(),
		QuestionSource: req.QuestionSource,
		RecordsFile:    req.RecordsFile,
		OutputPath:     req.OutputPath,
		Types:          req.Toggles.String(),
		Outcome:        string(out.Kind),
		Status:         out.Status,
		Warnings:       out.Warnings,
	}
	if out.Err != nil {
		data.ErrorMessage = out.Err.Error()
	}
	// An interrupted run is still recorded.
	if err := c.history.AppendRun(context.WithoutCancel(ctx), data); err != nil {
		c.logger.Warn("failed to record run", "run_id", out.RunID, "error", err)
	}
}
