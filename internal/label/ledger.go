// Package label maintains the append-only ledger of relevance labels.
// Human rows are the single source of truth for training; model rows
// are machine proposals pending confirmation.
package label

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/avolkov/threadsieve/internal/model"
)

var header = []string{"record_id", "text", "label", "labeled_by"}

// ErrDuplicateRecord rejects a second label for the same record id.
var ErrDuplicateRecord = errors.New("record already labeled")

// Ledger is a CSV-backed label store.
type Ledger struct {
	path string
}

// NewLedger opens (or will create) the ledger at path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Append adds one labeled example. A record id may appear at most once.
func (l *Ledger) Append(ex model.LabeledExample) error {
	added, _, err := l.AppendAll([]model.LabeledExample{ex})
	if err != nil {
		return err
	}
	if added == 0 {
		return fmt.Errorf("%s: %w", ex.RecordID, ErrDuplicateRecord)
	}
	return nil
}

// AppendAll adds a batch of labeled examples in one pass: the existing id
// set is loaded once, rows already present (or repeated within the batch)
// are skipped, and the rest are written. It returns how many rows were
// added and how many were skipped as duplicates.
func (l *Ledger) AppendAll(rows []model.LabeledExample) (added, duplicates int, err error) {
	ids, err := l.IDs()
	if err != nil {
		return 0, 0, err
	}

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, 0, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return 0, 0, fmt.Errorf("write ledger header: %w", err)
		}
	}
	for _, ex := range rows {
		if ex.RecordID == "" {
			w.Flush()
			return added, duplicates, errors.New("labeled example has empty record id")
		}
		if _, ok := ids[ex.RecordID]; ok {
			duplicates++
			continue
		}
		ids[ex.RecordID] = struct{}{}

		row := []string{ex.RecordID, ex.Text, string(ex.Label), string(ex.LabeledBy)}
		if err := w.Write(row); err != nil {
			return added, duplicates, fmt.Errorf("write ledger row: %w", err)
		}
		added++
	}
	w.Flush()
	return added, duplicates, w.Error()
}

// Load reads every row of the ledger. A missing file is an empty ledger.
func (l *Ledger) Load() ([]model.LabeledExample, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []model.LabeledExample
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == header[0] {
				continue
			}
		}
		if len(row) < 3 {
			continue
		}

		lbl, ok := parseLabel(row[2])
		if !ok {
			continue
		}
		by := model.LabeledByHuman
		if len(row) > 3 && strings.EqualFold(row[3], string(model.LabeledByModel)) {
			by = model.LabeledByModel
		}
		out = append(out, model.LabeledExample{
			RecordID:  row[0],
			Text:      row[1],
			Label:     lbl,
			LabeledBy: by,
		})
	}
	return out, nil
}

// HumanExamples returns only human-confirmed rows, the training truth.
func (l *Ledger) HumanExamples() ([]model.LabeledExample, error) {
	all, err := l.Load()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, ex := range all {
		if ex.LabeledBy == model.LabeledByHuman {
			out = append(out, ex)
		}
	}
	return out, nil
}

// IDs returns the set of record ids present in the ledger.
func (l *Ledger) IDs() (map[string]struct{}, error) {
	all, err := l.Load()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(all))
	for _, ex := range all {
		ids[ex.RecordID] = struct{}{}
	}
	return ids, nil
}

// parseLabel accepts the canonical names plus the 1/0 shorthand used in
// hand-edited labeling sheets.
func parseLabel(s string) (model.Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevant", "1":
		return model.LabelRelevant, true
	case "irrelevant", "0":
		return model.LabelIrrelevant, true
	default:
		return "", false
	}
}
