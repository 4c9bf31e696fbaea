package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avolkov/threadsieve/internal/label"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/sample"
)

var labelLedger string

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage the label ledger",
}

var labelImportCmd = &cobra.Command{
	Use:   "import <batch.csv>",
	Short: "Import a filled labeling sheet into the ledger",
	Long: `Import reads a labeling sheet produced by 'threadsieve sample' and
appends the human-confirmed rows to the label ledger. Rows whose label
column is empty are skipped; unconfirmed LLM proposals are not imported.`,
	Args: cobra.ExactArgs(1),
	RunE: runLabelImport,
}

func init() {
	rootCmd.AddCommand(labelCmd)
	labelCmd.AddCommand(labelImportCmd)

	labelImportCmd.Flags().StringVar(&labelLedger, "ledger", "data/labels.csv", "label ledger path")
}

func runLabelImport(cmd *cobra.Command, args []string) error {
	rows, err := sample.ReadBatch(args[0])
	if err != nil {
		return err
	}

	human := make([]model.LabeledExample, 0, len(rows))
	pending := 0
	for _, row := range rows {
		if row.LabeledBy != model.LabeledByHuman {
			pending++
			continue
		}
		human = append(human, row)
	}

	imported, duplicates, err := label.NewLedger(labelLedger).AppendAll(human)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d labels into %s\n", imported, labelLedger)
	if duplicates > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d rows already in the ledger\n", duplicates)
	}
	if pending > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d unconfirmed proposals\n", pending)
	}
	return nil
}
