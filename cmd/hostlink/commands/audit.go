package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Ratchanon22/hostlink/pkg/audit"
	"github.com/Ratchanon22/hostlink/pkg/disconnect"
)

// AuditOptions selects records for the audit command.
type AuditOptions struct {
	// Reason keeps only records with this reason (case-insensitive).
	Reason string

	// Since keeps records at or after this point: a duration back from now
	// ("24h"), an audit timestamp ("2024-03-01 12:00:00") or RFC3339.
	Since string

	// SummaryOnly suppresses the per-record listing.
	SummaryOnly bool
}

// filter converts the options relative to now.
func (o AuditOptions) filter(now time.Time) (audit.Filter, error) {
	var f audit.Filter
	if o.Reason != "" {
		r, err := disconnect.ParseReason(o.Reason)
		if err != nil {
			return f, err
		}
		f.Reason = &r
	}
	if o.Since != "" {
		since, err := parseSince(o.Since, now)
		if err != nil {
			return f, err
		}
		f.Since = since
	}
	return f, nil
}

func parseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation(audit.TimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q (use a duration, %q or RFC3339)", s, audit.TimeLayout)
}

// RunAudit prints the matching records of the audit file at path followed
// by a per-reason summary.
func RunAudit(path string, opts AuditOptions, w io.Writer) error {
	filter, err := opts.filter(time.Now())
	if err != nil {
		return err
	}

	res, err := audit.ReadFile(path, filter)
	if err != nil {
		return fmt.Errorf("failed to read audit file: %w", err)
	}

	if !opts.SummaryOnly {
		for _, r := range res.Records {
			fmt.Fprintln(w, r.Format())
		}
		if len(res.Records) > 0 {
			fmt.Fprintln(w)
		}
	}

	printAuditSummary(w, audit.Summarize(res.Records), res.Skipped)
	return nil
}

func printAuditSummary(w io.Writer, s audit.Summary, skipped int) {
	fmt.Fprintf(w, "Disconnects: %d\n", s.Total)
	if s.Total > 0 {
		fmt.Fprintf(w, "First:       %s\n", s.First.Local().Format(audit.TimeLayout))
		fmt.Fprintf(w, "Last:        %s\n", s.Last.Local().Format(audit.TimeLayout))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By Reason:")
		for _, rc := range s.Sorted() {
			fmt.Fprintf(w, "  %-18s %d\n", rc.Reason.String()+":", rc.Count)
		}
	}
	if skipped > 0 {
		fmt.Fprintf(w, "\nSkipped %d malformed line(s)\n", skipped)
	}
}
