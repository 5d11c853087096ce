//go:build windows

package disconnect

import (
	"syscall"

	"golang.org/x/sys/windows"
)

var errnoCodes = map[syscall.Errno]Code{
	windows.WSAECONNREFUSED:   CodeConnectionRefused,
	windows.WSAECONNRESET:     CodeConnectionReset,
	windows.WSAECONNABORTED:   CodeConnectionAborted,
	windows.ERROR_BROKEN_PIPE: CodeBrokenPipe,
	windows.WSAENETDOWN:       CodeNetworkDown,
	windows.WSAENETUNREACH:    CodeNetworkUnreachable,

	// WSAEHOSTUNREACH stays unmapped: an unreachable peer is not a local link fault.
}
