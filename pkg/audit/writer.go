package audit

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultPath is the audit file used when none is configured.
const DefaultPath = "disconnect_log.txt"

// Writer appends audit records.
type Writer interface {
	Append(r Record) error
}

// FileWriter appends records to a text file. Each Append opens the file in
// append mode, writes one line and closes it again, so external rotation
// and concurrent readers see complete lines.
type FileWriter struct {
	mu   sync.Mutex
	path string
}

// NewFileWriter creates a FileWriter for path (default: DefaultPath).
func NewFileWriter(path string) *FileWriter {
	if path == "" {
		path = DefaultPath
	}
	return &FileWriter{path: path}
}

// Path returns the audit file path.
func (w *FileWriter) Path() string {
	return w.path
}

// Append writes r as one line, creating the file with mode 0644 if needed.
func (w *FileWriter) Append(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit file %s: %w", w.path, err)
	}
	if _, err := io.WriteString(f, r.Format()+"\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append audit record: %w", err)
	}
	return f.Close()
}

// StreamWriter appends records to an io.Writer, e.g. stdout.
type StreamWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamWriter creates a StreamWriter on w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Append writes r as one line.
func (s *StreamWriter) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, r.Format()+"\n")
	return err
}

// MultiWriter appends to every writer, returning the first error.
type MultiWriter []Writer

// Append writes r to all writers.
func (m MultiWriter) Append(r Record) error {
	var first error
	for _, w := range m {
		if w == nil {
			continue
		}
		if err := w.Append(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Compile-time interface satisfaction checks.
var (
	_ Writer = (*FileWriter)(nil)
	_ Writer = (*StreamWriter)(nil)
	_ Writer = MultiWriter(nil)
)
