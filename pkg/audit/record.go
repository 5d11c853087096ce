package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ratchanon22/hostlink/pkg/disconnect"
)

// TimeLayout is the timestamp layout inside the brackets.
const TimeLayout = "2006-01-02 15:04:05"

const reasonPrefix = "] Disconnect Reason: "

// ErrMalformedRecord is returned for lines that are not audit records.
var ErrMalformedRecord = errors.New("malformed audit record")

// Record is one disconnect event.
type Record struct {
	Timestamp time.Time
	Reason    disconnect.Reason
}

// Format renders r as an audit line without the trailing newline.
func (r Record) Format() string {
	return fmt.Sprintf("[%s%s%s", r.Timestamp.Local().Format(TimeLayout), reasonPrefix, r.Reason)
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return r.Format()
}

// ParseRecord parses one audit line. The timestamp is read in local time.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "[") {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	i := strings.Index(line, reasonPrefix)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	ts, err := time.ParseInLocation(TimeLayout, line[1:i], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedRecord, err)
	}
	reason, err := disconnect.ParseReason(line[i+len(reasonPrefix):])
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return Record{Timestamp: ts, Reason: reason}, nil
}
