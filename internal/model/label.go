package model

// Label is the binary relevance judgment.
type Label string

const (
	LabelRelevant   Label = "relevant"
	LabelIrrelevant Label = "irrelevant"
)

// LabeledBy records who produced a label. Human rows are the training
// truth; model rows are proposals pending human confirmation.
type LabeledBy string

const (
	LabeledByHuman LabeledBy = "human"
	LabeledByModel LabeledBy = "model"
)

// LabeledExample pairs a record with a relevance label.
type LabeledExample struct {
	RecordID  string
	Text      string
	Label     Label
	LabeledBy LabeledBy
}
