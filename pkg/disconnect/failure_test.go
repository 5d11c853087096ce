package disconnect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestFromError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		f := FromError(StageRead, nil)
		assert.Equal(t, KindError, f.Kind)
		assert.Equal(t, StageRead, f.Stage)
	})

	t.Run("ContextDeadline", func(t *testing.T) {
		f := FromError(StageConnect, fmt.Errorf("dial: %w", context.DeadlineExceeded))
		assert.Equal(t, KindTimeout, f.Kind)
		assert.Equal(t, StageConnect, f.Stage)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		f := FromError(StageWrite, context.Canceled)
		assert.Equal(t, KindTimeout, f.Kind)
	})

	t.Run("SocketDeadline", func(t *testing.T) {
		err := &net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}
		assert.Equal(t, KindTimeout, FromError(StageRead, err).Kind)
	})

	t.Run("NetErrorTimeout", func(t *testing.T) {
		err := &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}}
		assert.Equal(t, KindTimeout, FromError(StageConnect, err).Kind)
	})

	t.Run("EOF", func(t *testing.T) {
		f := FromError(StageRead, io.EOF)
		assert.Equal(t, KindClosed, f.Kind)
		assert.Contains(t, f.Message, "connection was closed")
	})

	t.Run("PlainError", func(t *testing.T) {
		f := FromError(StageRead, errors.New("boom"))
		assert.Equal(t, KindError, f.Kind)
		assert.Equal(t, CodeNone, f.Code)
		assert.Equal(t, CodeNone, f.WrappedCode)
		assert.Equal(t, "boom", f.Message)
	})

	t.Run("FailurePassesThrough", func(t *testing.T) {
		orig := Failure{Kind: KindError, Stage: StageWrite, Code: CodeConnectionReset, Message: "reset"}
		f := FromError(StageRead, fmt.Errorf("cycle: %w", orig))
		assert.Equal(t, orig, f)
	})
}

func TestFailureError(t *testing.T) {
	assert.Equal(t, "read: connection was closed by the remote device", ClosedByPeer(StageRead).Error())
	assert.Equal(t, "connect: timeout", Failure{Kind: KindTimeout}.Error())
}

func TestKindStageCodeStrings(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "closed", KindClosed.String())
	assert.Equal(t, "write", StageWrite.String())
	assert.Equal(t, "connection-refused", CodeConnectionRefused.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.Equal(t, "Stage(9)", Stage(9).String())
	assert.Equal(t, "Code(99)", Code(99).String())
}
