//go:build !windows

package disconnect

import (
	"syscall"

	"golang.org/x/sys/unix"
)

var errnoCodes = map[syscall.Errno]Code{
	unix.ECONNREFUSED: CodeConnectionRefused,
	unix.ECONNRESET:   CodeConnectionReset,
	unix.ECONNABORTED: CodeConnectionAborted,
	unix.EPIPE:        CodeBrokenPipe,
	unix.ENETDOWN:     CodeNetworkDown,
	unix.ENETUNREACH:  CodeNetworkUnreachable,

	// EHOSTUNREACH stays unmapped: an unreachable peer is not a local link fault.
}
