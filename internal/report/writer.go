// Package report persists an engine report to its destination file.
package report

import (
	"fmt"
	"io"
	"os"
)

// Stage names the step at which persisting failed.
type Stage string

const (
	StageCreate Stage = "create"
	StageWrite  Stage = "write"
)

const (
	MsgCreateFailed = "Error creating output file"
	MsgWriteFailed  = "Error writing to output file"
)

// PersistenceError reports a failure to create or fill the output file.
type PersistenceError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s output %q: %v", e.Stage, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Message returns the user-facing status for the failed stage.
func (e *PersistenceError) Message() string {
	if e.Stage == StageCreate {
		return MsgCreateFailed
	}
	return MsgWriteFailed
}

// Writer creates report files. The zero value writes to the real file system.
type Writer struct {
	// Perm is the mode for new files. Zero means 0o644.
	Perm os.FileMode

	open func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)
}

func (w *Writer) openFile(name string, perm os.FileMode) (io.WriteCloser, error) {
	// O_EXCL makes the create fail if the path appeared since validation.
	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if w.open != nil {
		return w.open(name, flag, perm)
	}
	return os.OpenFile(name, flag, perm)
}

// Write creates path exactly once and writes payload to it unchanged.
// It never overwrites an existing file. A failed write leaves whatever
// bytes made it to disk.
func (w *Writer) Write(path, payload string) error {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}

	f, err := w.openFile(path, perm)
	if err != nil {
		return &PersistenceError{Stage: StageCreate, Path: path, Err: err}
	}

	_, werr := io.WriteString(f, payload)
	cerr := f.Close()
	if werr != nil {
		return &PersistenceError{Stage: StageWrite, Path: path, Err: werr}
	}
	if cerr != nil {
		return &PersistenceError{Stage: StageWrite, Path: path, Err: cerr}
	}
	return nil
}
