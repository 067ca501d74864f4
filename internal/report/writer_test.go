package report

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFile struct {
	writeErr error
	closeErr error
	closed   bool
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteExactPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	payload := "Type,Correct,Total\nA,3,4\n\n"

	require.NoError(t, new(Writer).Write(path, payload))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestWriteEmptyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, new(Writer).Write(path, ""))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestWriteRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	err := new(Writer).Write(path, "new")
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StageCreate, pe.Stage)
	assert.Equal(t, MsgCreateFailed, pe.Message())
	assert.True(t, errors.Is(err, os.ErrExist))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestWriteCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "out.csv")

	err := new(Writer).Write(path, "body")
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StageCreate, pe.Stage)
}

func TestWriteFailures(t *testing.T) {
	boom := errors.New("disk full")

	tests := []struct {
		name string
		file *failingFile
	}{
		{"write", &failingFile{writeErr: boom}},
		{"close", &failingFile{closeErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			w := &Writer{open: func(string, int, os.FileMode) (io.WriteCloser, error) {
				calls++
				return tt.file, nil
			}}

			err := w.Write("out.csv", "body")
			var pe *PersistenceError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, StageWrite, pe.Stage)
			assert.Equal(t, MsgWriteFailed, pe.Message())
			assert.ErrorIs(t, err, boom)
			assert.True(t, tt.file.closed)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWriteUsesExclusiveCreate(t *testing.T) {
	var gotFlag int
	w := &Writer{open: func(_ string, flag int, _ os.FileMode) (io.WriteCloser, error) {
		gotFlag = flag
		return &failingFile{}, nil
	}}

	require.NoError(t, w.Write("out.csv", "x"))
	assert.NotZero(t, gotFlag&os.O_EXCL)
	assert.NotZero(t, gotFlag&os.O_CREATE)
}
