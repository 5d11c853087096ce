package transport

import (
	"fmt"
	"time"

	"github.com/Ratchanon22/hostlink/pkg/disconnect"
)

// Status is the outcome of a bounded transport operation.
type Status uint8

const (
	StatusOK Status = iota
	StatusTimedOut
	StatusClosed
	StatusAborted
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimedOut:
		return "timed_out"
	case StatusClosed:
		return "closed"
	case StatusAborted:
		return "aborted"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Result is the explicit outcome of Dial, Write, Read or Exchange.
type Result struct {
	Status Status

	// Stage is the operation that produced this result.
	Stage disconnect.Stage

	// Data holds the bytes read by a successful Read.
	Data []byte

	// Err is the underlying error for non-OK results. It is nil for
	// StatusOK and may be nil for StatusClosed.
	Err error

	// Elapsed is the wall time the operation took.
	Elapsed time.Duration
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Failure converts a non-OK result into a classifier input.
func (r Result) Failure() disconnect.Failure {
	switch r.Status {
	case StatusClosed:
		return disconnect.ClosedByPeer(r.Stage)
	case StatusTimedOut:
		if r.Err == nil {
			return disconnect.TimedOut(r.Stage, "operation timed out")
		}
		f := disconnect.FromError(r.Stage, r.Err)
		f.Kind = disconnect.KindTimeout
		return f
	default:
		return disconnect.FromError(r.Stage, r.Err)
	}
}

// resultFromError maps a Go error observed at stage onto a Result.
func resultFromError(stage disconnect.Stage, err error) Result {
	if err == nil {
		return Result{Status: StatusOK, Stage: stage}
	}

	f := disconnect.FromError(stage, err)
	status := StatusError
	switch {
	case f.Kind == disconnect.KindTimeout:
		status = StatusTimedOut
	case f.Kind == disconnect.KindClosed:
		status = StatusClosed
	case isAbort(f.Code) || isAbort(f.WrappedCode):
		status = StatusAborted
	}
	return Result{Status: status, Stage: stage, Err: err}
}

func isAbort(code disconnect.Code) bool {
	switch code {
	case disconnect.CodeConnectionReset, disconnect.CodeConnectionAborted, disconnect.CodeBrokenPipe:
		return true
	default:
		return false
	}
}
