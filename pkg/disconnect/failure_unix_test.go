//go:build !windows

package disconnect

import (
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFromErrorErrno(t *testing.T) {
	t.Run("DirectCode", func(t *testing.T) {
		f := FromError(StageConnect, unix.ECONNREFUSED)
		assert.Equal(t, CodeConnectionRefused, f.Code)
		assert.Equal(t, CodeNone, f.WrappedCode)
	})

	t.Run("WrappedCode", func(t *testing.T) {
		err := &net.OpError{
			Op:  "read",
			Net: "tcp",
			Err: os.NewSyscallError("read", unix.ECONNRESET),
		}
		f := FromError(StageRead, err)
		assert.Equal(t, CodeNone, f.Code)
		assert.Equal(t, CodeConnectionReset, f.WrappedCode)
		assert.Equal(t, DeviceClosed, Classifier{NetworkAvailable: available}.Classify(f))
	})

	t.Run("HostUnreachableIsUnknown", func(t *testing.T) {
		err := &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: os.NewSyscallError("connect", unix.EHOSTUNREACH),
		}
		f := FromError(StageConnect, err)
		assert.Equal(t, CodeOther, f.WrappedCode)
		assert.Equal(t, Unknown, Classifier{NetworkAvailable: available}.Classify(f))
	})

	t.Run("UnmappedCode", func(t *testing.T) {
		f := FromError(StageWrite, syscall.Errno(unix.EACCES))
		assert.Equal(t, CodeOther, f.Code)
		assert.Equal(t, Unknown, Classifier{NetworkAvailable: unavailable}.Classify(f))
	})

	t.Run("MappedTable", func(t *testing.T) {
		tests := []struct {
			errno syscall.Errno
			want  Reason
		}{
			{unix.ECONNREFUSED, PortBlocked},
			{unix.ECONNRESET, DeviceClosed},
			{unix.ECONNABORTED, DeviceClosed},
			{unix.EPIPE, DeviceClosed},
			{unix.ENETDOWN, EthernetUnplugged},
			{unix.ENETUNREACH, EthernetUnplugged},
			{unix.EHOSTUNREACH, Unknown},
		}
		for _, tt := range tests {
			f := FromError(StageRead, os.NewSyscallError("op", tt.errno))
			assert.Equal(t, tt.want, Classifier{NetworkAvailable: available}.Classify(f), "errno %v", tt.errno)
		}
	})
}

func TestRefusedDialClassifiesPortBlocked(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = net.Dial("tcp", addr)
	require.Error(t, err)

	f := FromError(StageConnect, err)
	assert.Equal(t, PortBlocked, Classifier{NetworkAvailable: available}.Classify(f))
}
