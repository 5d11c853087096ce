package disconnect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Kind is the coarse shape of a failure.
type Kind uint8

const (
	// KindError is any failure that is neither a timeout nor a clean close.
	KindError Kind = iota

	// KindTimeout is a deadline expiry or cancellation.
	KindTimeout

	// KindClosed is a graceful close by the peer (zero-byte read).
	KindClosed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindTimeout:
		return "timeout"
	case KindClosed:
		return "closed"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Stage is the operation that failed.
type Stage uint8

const (
	StageConnect Stage = iota
	StageWrite
	StageRead
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageConnect:
		return "connect"
	case StageWrite:
		return "write"
	case StageRead:
		return "read"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// Code is a platform-neutral socket error code.
type Code uint8

const (
	// CodeNone means no socket error code was observed.
	CodeNone Code = iota
	CodeConnectionRefused
	CodeConnectionReset
	CodeConnectionAborted
	CodeBrokenPipe
	CodeNetworkDown
	CodeNetworkUnreachable

	// CodeOther is a socket error code outside the mapped set.
	CodeOther
)

var codeNames = map[Code]string{
	CodeNone:               "none",
	CodeConnectionRefused:  "connection-refused",
	CodeConnectionReset:    "connection-reset",
	CodeConnectionAborted:  "connection-aborted",
	CodeBrokenPipe:         "broken-pipe",
	CodeNetworkDown:        "network-down",
	CodeNetworkUnreachable: "network-unreachable",
	CodeOther:              "other",
}

// String returns the code name.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// closedByPeerMessage is recognised by the classifier's text rule.
const closedByPeerMessage = "connection was closed by the remote device"

// Failure is one observed link failure.
type Failure struct {
	Kind  Kind
	Stage Stage

	// Code is a socket error code carried by the failure itself.
	Code Code

	// WrappedCode is a socket error code found deeper in the error chain.
	WrappedCode Code

	// Message is the human-readable description.
	Message string
}

// Error implements error.
func (f Failure) Error() string {
	msg := f.Message
	if msg == "" {
		msg = f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Stage, msg)
}

// ClosedByPeer builds the failure for a graceful close at stage.
func ClosedByPeer(stage Stage) Failure {
	return Failure{
		Kind:    KindClosed,
		Stage:   stage,
		Message: closedByPeerMessage,
	}
}

// TimedOut builds a timeout failure at stage.
func TimedOut(stage Stage, message string) Failure {
	return Failure{
		Kind:    KindTimeout,
		Stage:   stage,
		Message: message,
	}
}

// FromError converts a Go error observed at stage into a Failure.
//
// Deadline expiry, context cancellation and net.Error timeouts become
// KindTimeout; io.EOF becomes a graceful close. A syscall.Errno that is the
// error itself sets Code, one found inside the chain sets WrappedCode.
func FromError(stage Stage, err error) Failure {
	if err == nil {
		return Failure{Kind: KindError, Stage: stage, Message: "unspecified failure"}
	}

	var f Failure
	if errors.As(err, &f) {
		return f
	}

	if isTimeout(err) {
		return TimedOut(stage, err.Error())
	}
	if errors.Is(err, io.EOF) {
		return ClosedByPeer(stage)
	}

	f = Failure{Kind: KindError, Stage: stage, Message: err.Error()}

	var errno syscall.Errno
	if direct, ok := err.(syscall.Errno); ok {
		f.Code = codeFromErrno(direct)
	} else if errors.As(err, &errno) {
		f.WrappedCode = codeFromErrno(errno)
	}
	return f
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func codeFromErrno(errno syscall.Errno) Code {
	if errno == 0 {
		return CodeNone
	}
	if code, ok := errnoCodes[errno]; ok {
		return code
	}
	return CodeOther
}
