package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/avolkov/threadsieve/internal/model"
)

// maxLineBytes bounds a single record line; anything larger is treated
// as corrupt rather than growing the scanner buffer without limit.
const maxLineBytes = 4 << 20

// Reader iterates a JSONL corpus. Each call to Each re-opens the file,
// so iteration is restartable and independent of crawl progress.
type Reader struct {
	path    string
	logger  *slog.Logger
	corrupt int
}

// NewReader creates a reader over the corpus at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{path: path, logger: logger}
}

// Each calls fn for every well-formed record in write order. Malformed
// lines are counted and skipped; they never abort iteration. An error
// from fn stops iteration and is returned.
func (r *Reader) Each(fn func(rec model.Record) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	r.corrupt = 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec model.Record
		if err := json.Unmarshal(line, &rec); err != nil || rec.ID == "" {
			r.corrupt++
			r.logger.Warn("skipping corrupt record", "line", lineNo)
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan corpus: %w", err)
	}
	return nil
}

// Corrupt returns the number of malformed lines skipped by the last Each.
func (r *Reader) Corrupt() int { return r.corrupt }
