package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/abhisek/qperformance/internal/qtype"
)

const (
	// RequestSchemaVersion is sent with every request to an external engine.
	RequestSchemaVersion = 1

	// maxOutputBytes bounds what is captured from the engine's stdout.
	maxOutputBytes = 64 * 1024 * 1024
	// maxStderrBytes bounds the stderr kept for error messages.
	maxStderrBytes = 4 * 1024

	// waitDelay is how long Analyze keeps reading output after the engine
	// exits or is killed. Processes the engine left behind may still hold
	// its stdout open.
	waitDelay = time.Second
)

// ExecConfig configures an engine run as an external process.
type ExecConfig struct {
	// Command is the executable followed by fixed arguments.
	Command []string

	// Env is appended to the current environment.
	Env []string

	// Timeout bounds a single analysis. Zero means no limit.
	Timeout time.Duration
}

// ExecEngine runs an external analysis program. The request is written to
// its stdin as JSON and the response is read from its stdout.
type ExecEngine struct {
	cfg    ExecConfig
	logger *slog.Logger
}

// NewExecEngine creates an ExecEngine. A nil logger discards output.
func NewExecEngine(cfg ExecConfig, logger *slog.Logger) (*ExecEngine, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, errors.New("engine command cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ExecEngine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "engine"), slog.String("command", cfg.Command[0])),
	}, nil
}

// execRequest is the stdin document.
type execRequest struct {
	SchemaVersion  int         `json:"schema_version"`
	QuestionSource string      `json:"question_source"`
	RecordsFile    string      `json:"records_file"`
	Detail         bool        `json:"detail"`
	Types          qtype.Codes `json:"types"`
}

// Name returns the configured executable.
func (e *ExecEngine) Name() string {
	return e.cfg.Command[0]
}

// Analyze runs the external engine once.
func (e *ExecEngine) Analyze(ctx context.Context, in Input) (*Result, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	types := in.Types
	if types == nil {
		types = qtype.Codes{}
	}
	reqJSON, err := json.Marshal(execRequest{
		SchemaVersion:  RequestSchemaVersion,
		QuestionSource: in.QuestionSource,
		RecordsFile:    in.RecordsFile,
		Detail:         in.Detail,
		Types:          types,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal engine request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.cfg.Command[0], e.cfg.Command[1:]...)
	cmd.WaitDelay = waitDelay
	if len(e.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), e.cfg.Env...)
	}
	stdout := &limitedBuffer{max: maxOutputBytes}
	stderr := &limitedBuffer{max: maxStderrBytes}
	cmd.Stdin = bytes.NewReader(reqJSON)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	e.logger.Debug("starting analysis engine", "types", in.Types.String(), "detail", in.Detail)
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runErr, exec.ErrWaitDelay) && ctx.Err() == nil {
		// The engine exited cleanly; only a leftover process held the pipes.
		e.logger.Warn("analysis engine left processes holding its output", "elapsed", elapsed)
		runErr = nil
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("analysis engine: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			e.logger.Warn("analysis engine failed", "exit_code", exitErr.ExitCode(), "elapsed", elapsed)
			return nil, &ErrExit{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, &ErrUnavailable{Command: e.cfg.Command[0], Err: runErr}
	}

	if stdout.truncated {
		return nil, &ErrInvalidOutput{Err: fmt.Errorf("output exceeds %d bytes", maxOutputBytes)}
	}

	res, err := decodeResponse(stdout.Bytes())
	if err != nil {
		e.logger.Warn("analysis engine returned invalid output", "error", err, "stderr", stderr.String())
		return nil, err
	}

	e.logger.Debug("analysis engine finished", "elapsed", elapsed, "warnings", len(res.Warnings), "report_bytes", len(res.Report))
	return res, nil
}

// limitedBuffer keeps at most max bytes and silently drops the rest so a
// chatty child never blocks on a full pipe. It must not grow a
// ReadFrom method: io.Copy has to go through Write.
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	room := b.max - b.buf.Len()
	if len(p) > room {
		if room > 0 {
			b.buf.Write(p[:room])
		}
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte  { return b.buf.Bytes() }
func (b *limitedBuffer) String() string { return b.buf.String() }
