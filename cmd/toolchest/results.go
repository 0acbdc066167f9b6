package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LClos/data-toolchest/pkg/results"
)

var (
	resultsOldPath   string
	resultsNewPath   string
	resultsIDColumn  string
	resultsDelimiter string
	resultsOutput    string
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Compare two delimited results tables row by row",
	Long: `Results reads two delimited tables keyed by an identifier column and
emits a cell-by-cell comparison: numeric cells become deltas, text
cells become TRUE/FALSE equality markers, and rows or columns missing
on either side are logged.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&resultsOldPath, "old", "", "path to the original table (required)")
	resultsCmd.Flags().StringVar(&resultsNewPath, "new", "", "path to the new table (required)")
	resultsCmd.Flags().StringVar(&resultsIDColumn, "id-column", results.DefaultIDColumn, "column identifying each row")
	resultsCmd.Flags().StringVar(&resultsDelimiter, "delimiter", "\t", "field delimiter")
	resultsCmd.Flags().StringVarP(&resultsOutput, "output", "o", "", "write output to file instead of stdout")
	_ = resultsCmd.MarkFlagRequired("old")
	_ = resultsCmd.MarkFlagRequired("new")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	if len(resultsDelimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", resultsDelimiter)
	}
	opts := results.Options{
		Delimiter: rune(resultsDelimiter[0]),
		IDColumn:  resultsIDColumn,
	}

	oldTable, err := parseTable(resultsOldPath, opts)
	if err != nil {
		return err
	}
	newTable, err := parseTable(resultsNewPath, opts)
	if err != nil {
		return err
	}

	comparison, err := results.Compare(oldTable, newTable)
	if err != nil {
		return err
	}
	rendered := comparison.TSV()

	if resultsOutput != "" {
		return os.WriteFile(resultsOutput, []byte(rendered), 0644)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func parseTable(path string, opts results.Options) (*results.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	table, err := results.Parse(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return table, nil
}
