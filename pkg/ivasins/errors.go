package ivasins

import (
	"errors"
	"fmt"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/invoker"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/locator"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/summary"
)

// ErrEngineNotFound indicates no strategy located the motores directory.
var ErrEngineNotFound = locator.ErrEngineNotFound

// ErrEngineMissing indicates motores holds no usable engine binary or script.
var ErrEngineMissing = locator.ErrEngineMissing

// ErrSummaryMissing indicates a clean exit without a summary file.
var ErrSummaryMissing = summary.ErrSummaryMissing

// ErrInvalidRequest indicates a request rejected before the engine ran.
var ErrInvalidRequest = invoker.ErrInvalidRequest

// ErrEngineReportedFailure indicates a clean exit whose summary says ok=false.
var ErrEngineReportedFailure = errors.New("engine reported a failed run")

// ErrNoOutput indicates an export was requested before any output exists.
var ErrNoOutput = errors.New("no output available; run the engine first")

// ProcessError reports a non-zero engine exit.
type ProcessError = invoker.ProcessError

// ErrorKind categorizes failures for the caller.
type ErrorKind string

const (
	KindNone                  ErrorKind = ""
	KindEngineNotFound        ErrorKind = "engine_not_found"
	KindEngineMissing         ErrorKind = "engine_missing"
	KindProcessFailure        ErrorKind = "process_failure"
	KindSummaryMissing        ErrorKind = "summary_missing"
	KindEngineReportedFailure ErrorKind = "engine_reported_failure"
	KindInvalidRequest        ErrorKind = "invalid_request"
	KindIOFailure             ErrorKind = "io_failure"
)

// IOError represents a copy or read failure on a session file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Classify maps err to its kind and a message fit for the user.
func Classify(err error) (ErrorKind, string) {
	if err == nil {
		return KindNone, "OK"
	}
	var perr *invoker.ProcessError
	switch {
	case errors.As(err, &perr):
		return KindProcessFailure, perr.Error()
	case errors.Is(err, ErrEngineNotFound):
		return KindEngineNotFound, err.Error()
	case errors.Is(err, ErrEngineMissing):
		return KindEngineMissing, err.Error()
	case errors.Is(err, ErrSummaryMissing):
		return KindSummaryMissing, "the engine did not produce a process summary"
	case errors.Is(err, ErrEngineReportedFailure):
		return KindEngineReportedFailure, err.Error()
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest, err.Error()
	}
	return KindIOFailure, err.Error()
}
