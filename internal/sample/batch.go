package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/avolkov/threadsieve/internal/model"
)

var batchHeader = []string{"record_id", "text", "proposed_label", "label"}

// WriteBatch writes a labeling sheet. The label column is left empty for
// the human to fill; proposals, when present, go into proposed_label.
func WriteBatch(path string, batch []Candidate, proposals []model.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(batchHeader); err != nil {
		return fmt.Errorf("write batch header: %w", err)
	}
	for i, c := range batch {
		proposed := ""
		if i < len(proposals) {
			proposed = string(proposals[i])
		}
		if err := w.Write([]string{c.RecordID, c.Text, proposed, ""}); err != nil {
			return fmt.Errorf("write batch row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadBatch reads back a filled labeling sheet. Only rows whose label
// column was filled are returned, as human-confirmed examples; rows
// where the human left only the proposal are returned as model rows.
func ReadBatch(path string) ([]model.LabeledExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
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
			return nil, fmt.Errorf("read batch: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == batchHeader[0] {
				continue
			}
		}
		if len(row) < 4 || row[0] == "" {
			continue
		}

		if lbl, ok := parseBatchLabel(row[3]); ok {
			out = append(out, model.LabeledExample{
				RecordID:  row[0],
				Text:      row[1],
				Label:     lbl,
				LabeledBy: model.LabeledByHuman,
			})
			continue
		}
		if lbl, ok := parseBatchLabel(row[2]); ok {
			out = append(out, model.LabeledExample{
				RecordID:  row[0],
				Text:      row[1],
				Label:     lbl,
				LabeledBy: model.LabeledByModel,
			})
		}
	}
	return out, nil
}

func parseBatchLabel(s string) (model.Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevant", "1":
		return model.LabelRelevant, true
	case "irrelevant", "0":
		return model.LabelIrrelevant, true
	default:
		return "", false
	}
}
