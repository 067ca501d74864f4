// Package pathcheck verifies the file-system preconditions of a run before
// any analysis work starts. It never mutates the file system.
package pathcheck

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Check identifies which precondition failed.
type Check string

const (
	CheckQuestionSource Check = "question-source"
	CheckRecordsFile    Check = "records-file"
	CheckOutput         Check = "output"
)

const (
	MsgQuestionSourceMissing = "Question set location does not exist."
	MsgRecordsFileMissing    = "QuizMachine records file does not exist."
	MsgOutputExists          = "Output file already exists. Choose a different file name."
)

// ValidationError reports the first violated precondition.
type ValidationError struct {
	Check   Check
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Check, e.Path, e.Message)
}

// Validator runs the ordered existence checks.
type Validator struct {
	logger *slog.Logger
	stat   func(string) (os.FileInfo, error)
	lstat  func(string) (os.FileInfo, error)
}

// New creates a Validator. A nil logger discards output.
func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{
		logger: logger.With(slog.String("component", "pathcheck")),
		stat:   os.Stat,
		lstat:  os.Lstat,
	}
}

// Validate checks, in order, that the question source exists, that the
// records path is a regular file, and that nothing, not even a dangling
// symlink, occupies the output path. It stops at the first failure and returns a *ValidationError.
func (v *Validator) Validate(questionSource, recordsFile, output string) error {
	if _, ok := v.lookup(v.stat, questionSource); !ok {
		return &ValidationError{Check: CheckQuestionSource, Path: questionSource, Message: MsgQuestionSourceMissing}
	}

	if fi, ok := v.lookup(v.stat, recordsFile); !ok || !fi.Mode().IsRegular() {
		return &ValidationError{Check: CheckRecordsFile, Path: recordsFile, Message: MsgRecordsFileMissing}
	}

	if _, ok := v.lookup(v.lstat, output); ok {
		return &ValidationError{Check: CheckOutput, Path: output, Message: MsgOutputExists}
	}

	return nil
}

// lookup stats path. Any error, permission denied included, counts as
// "not found"; it is only logged.
func (v *Validator) lookup(stat func(string) (os.FileInfo, error), path string) (os.FileInfo, bool) {
	if path == "" {
		return nil, false
	}
	fi, err := stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			v.logger.Debug("stat failed, treating path as missing", "path", path, "error", err)
		}
		return nil, false
	}
	return fi, true
}
