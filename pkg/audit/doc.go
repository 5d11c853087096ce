// Package audit keeps the append-only disconnect audit file.
//
// Each detected disconnect appends one line:
//
//	[2006-01-02 15:04:05] Disconnect Reason: PortBlocked
//
// Timestamps are local wall-clock time. The file is never rewritten; the
// Reader parses it back for the audit command.
package audit
