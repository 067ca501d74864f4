package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/qperformance/internal/qtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperEngine is not a real test. It is re-executed as a child
// process by the tests below to play the part of an external engine.
func TestHelperEngine(t *testing.T) {
	if os.Getenv("QPERF_HELPER_ENGINE") != "1" {
		return
	}

	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		os.Exit(2)
	}
	var req struct {
		QuestionSource string   `json:"question_source"`
		RecordsFile    string   `json:"records_file"`
		Detail         bool     `json:"detail"`
		Types          []string `json:"types"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintln(os.Stderr, "bad request:", err)
		os.Exit(2)
	}

	switch os.Getenv("QPERF_HELPER_MODE") {
	case "ok":
		out, _ := json.Marshal(map[string]any{
			"warnings": []string{fmt.Sprintf("types=%v detail=%v", req.Types, req.Detail)},
			"report":   "source=" + req.QuestionSource + "\nrecords=" + req.RecordsFile + "\n",
		})
		os.Stdout.Write(out)
	case "no-warnings":
		fmt.Fprint(os.Stdout, `{"report":"R"}`)
	case "exit":
		fmt.Fprint(os.Stderr, "cannot parse question set\n")
		os.Exit(3)
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
	case "schema":
		fmt.Fprint(os.Stdout, `{"warnings":[1,2]}`)
	case "echo":
		out, _ := json.Marshal(map[string]any{"report": string(raw)})
		os.Stdout.Write(out)
	case "sleep":
		time.Sleep(5 * time.Second)
	case "orphan":
		startSleeper()
		time.Sleep(5 * time.Second)
	case "linger":
		startSleeper()
		fmt.Fprint(os.Stdout, `{"report":"done"}`)
	}
	os.Exit(0)
}

// startSleeper leaves behind a process that shares this one's stdout.
func startSleeper() {
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperEngine$")
	cmd.Env = append(os.Environ(), "QPERF_HELPER_MODE=sleep")
	cmd.Stdin = strings.NewReader("{}")
	cmd.Stdout = os.Stdout
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "start sleeper:", err)
		os.Exit(2)
	}
}

func helperEngine(t *testing.T, mode string, timeout time.Duration) *ExecEngine {
	t.Helper()
	e, err := NewExecEngine(ExecConfig{
		Command: []string{os.Args[0], "-test.run=^TestHelperEngine$"},
		Env:     []string{"QPERF_HELPER_ENGINE=1", "QPERF_HELPER_MODE=" + mode},
		Timeout: timeout,
	}, nil)
	require.NoError(t, err)
	return e
}

func testInput() Input {
	return Input{
		QuestionSource: "/q/sets",
		RecordsFile:    "/q/records.csv",
		Types:          qtype.Codes{qtype.According, qtype.Quote, qtype.MemoryVerseTotals},
	}
}

func TestExecEngineSuccess(t *testing.T) {
	e := helperEngine(t, "ok", 0)

	res, err := e.Analyze(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"types=[A Q M] detail=false"}, res.Warnings)
	assert.Equal(t, "source=/q/sets\nrecords=/q/records.csv\n", res.Report)
}

func TestExecEngineMissingWarnings(t *testing.T) {
	e := helperEngine(t, "no-warnings", 0)

	res, err := e.Analyze(context.Background(), testInput())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.NotNil(t, res.Warnings)
	assert.Equal(t, "R", res.Report)
}

func TestExecEngineExitStatus(t *testing.T) {
	e := helperEngine(t, "exit", 0)

	_, err := e.Analyze(context.Background(), testInput())
	var exitErr *ErrExit
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "cannot parse question set", exitErr.Stderr)
}

func TestExecEngineInvalidOutput(t *testing.T) {
	for _, mode := range []string{"garbage", "schema"} {
		t.Run(mode, func(t *testing.T) {
			e := helperEngine(t, mode, 0)

			_, err := e.Analyze(context.Background(), testInput())
			var invErr *ErrInvalidOutput
			require.ErrorAs(t, err, &invErr)
		})
	}
}

func TestExecEngineTimeout(t *testing.T) {
	e := helperEngine(t, "sleep", 200*time.Millisecond)

	_, err := e.Analyze(context.Background(), testInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExecEngineTimeoutWithLeftoverProcess(t *testing.T) {
	e := helperEngine(t, "orphan", 200*time.Millisecond)

	start := time.Now()
	_, err := e.Analyze(context.Background(), testInput())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecEngineCleanExitWithLeftoverProcess(t *testing.T) {
	e := helperEngine(t, "linger", 0)

	start := time.Now()
	res, err := e.Analyze(context.Background(), testInput())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "done", res.Report)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecEngineRequestDocument(t *testing.T) {
	e := helperEngine(t, "echo", 0)

	res, err := e.Analyze(context.Background(), testInput())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"schema_version": 1,
		"question_source": "/q/sets",
		"records_file": "/q/records.csv",
		"detail": false,
		"types": ["A", "Q", "M"]
	}`, res.Report)

	in := testInput()
	in.Types = nil
	res, err = e.Analyze(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, res.Report, `"types":[]`)
}

func TestExecEngineUnavailable(t *testing.T) {
	e, err := NewExecEngine(ExecConfig{Command: []string{"qperf-engine-that-does-not-exist"}}, nil)
	require.NoError(t, err)

	_, err = e.Analyze(context.Background(), testInput())
	var unErr *ErrUnavailable
	require.ErrorAs(t, err, &unErr)
	assert.Equal(t, "qperf-engine-that-does-not-exist", e.Name())
}

func TestNewExecEngineRequiresCommand(t *testing.T) {
	_, err := NewExecEngine(ExecConfig{}, nil)
	assert.Error(t, err)

	_, err = NewExecEngine(ExecConfig{Command: []string{"  "}}, nil)
	assert.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"full", `{"warnings":["w1","w2"],"report":"REPORT-BODY"}`, false},
		{"extra fields", `{"report":"x","version":"1.2"}`, false},
		{"missing report", `{"warnings":[]}`, true},
		{"report wrong type", `{"report":5}`, true},
		{"warnings wrong type", `{"report":"x","warnings":"w"}`, true},
		{"not an object", `[1]`, true},
		{"malformed", `{`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decodeResponse([]byte(tt.raw))
			if tt.wantErr {
				var invErr *ErrInvalidOutput
				require.ErrorAs(t, err, &invErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, res)
		})
	}
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{max: 4}
	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, b.truncated)

	n, err = b.Write([]byte("def"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, b.truncated)
	assert.Equal(t, "abcd", b.String())

	_, err = b.Write([]byte("g"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", b.String())
}
