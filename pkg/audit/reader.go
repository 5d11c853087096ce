package audit

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Ratchanon22/hostlink/pkg/disconnect"
)

// Filter selects records. Zero fields match everything.
type Filter struct {
	// Reason filters by exact reason.
	Reason *disconnect.Reason

	// Since keeps records at or after this time.
	Since time.Time

	// Until keeps records before this time.
	Until time.Time
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r Record) bool {
	if f.Reason != nil && r.Reason != *f.Reason {
		return false
	}
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !r.Timestamp.Before(f.Until) {
		return false
	}
	return true
}

// ReadResult is the outcome of reading an audit file.
type ReadResult struct {
	Records []Record

	// Skipped counts lines that were not audit records.
	Skipped int
}

// Read parses every matching record from r. Malformed and blank lines are
// skipped and counted.
func Read(r io.Reader, filter Filter) (ReadResult, error) {
	var res ReadResult
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			res.Skipped++
			continue
		}
		if filter.Matches(rec) {
			res.Records = append(res.Records, rec)
		}
	}
	return res, scanner.Err()
}

// ReadFile reads the audit file at path.
func ReadFile(path string, filter Filter) (ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReadResult{}, err
	}
	defer f.Close()
	return Read(f, filter)
}

// Summary aggregates records.
type Summary struct {
	Total    int
	ByReason map[disconnect.Reason]int
	First    time.Time
	Last     time.Time
}

// Summarize counts records per reason and the covered time range.
func Summarize(records []Record) Summary {
	s := Summary{ByReason: make(map[disconnect.Reason]int)}
	for _, r := range records {
		s.Total++
		s.ByReason[r.Reason]++
		if s.First.IsZero() || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}
	}
	return s
}

// ReasonCount is one row of Summary.Sorted.
type ReasonCount struct {
	Reason disconnect.Reason
	Count  int
}

// Sorted returns per-reason counts, most frequent first, ties by name.
func (s Summary) Sorted() []ReasonCount {
	out := make([]ReasonCount, 0, len(s.ByReason))
	for r, n := range s.ByReason {
		out = append(out, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason.String() < out[j].Reason.String()
	})
	return out
}
