// Package corpus persists crawled records as line-delimited JSON. The
// sink appends and flushes one record at a time, so the full corpus is
// never held in memory.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/avolkov/threadsieve/internal/model"
)

// ErrEmptyID rejects records that cannot be addressed later.
var ErrEmptyID = errors.New("record has empty id")

// Writer appends records to a JSONL file.
type Writer struct {
	file  *os.File
	buf   *bufio.Writer
	count int
}

// NewWriter opens path for appending, creating it if needed. Append-only
// is the contract of the raw corpus: interrupted crawls resume without
// losing earlier records.
func NewWriter(path string) (*Writer, error) {
	return newWriter(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

// NewTruncatingWriter opens path for writing from scratch, replacing any
// previous contents. Derived artifacts such as filter outputs use this so
// a re-run rewrites the file instead of appending a second copy.
func NewTruncatingWriter(path string) (*Writer, error) {
	return newWriter(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

func newWriter(path string, flag int) (*Writer, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// Append writes one record and flushes it. A record is either fully
// present in the file or not present at all.
func (w *Writer) Append(rec model.Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	line = append(line, '\n')

	if _, err := w.buf.Write(line); err != nil {
		return fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush record %s: %w", rec.ID, err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended by this writer.
func (w *Writer) Count() int { return w.count }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
