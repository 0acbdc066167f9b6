package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LClos/data-toolchest/pkg/differ"
	"github.com/LClos/data-toolchest/pkg/export"
	"github.com/LClos/data-toolchest/pkg/parser"
	"github.com/LClos/data-toolchest/pkg/renderer"
)

var (
	compareOldPath        string
	compareNewPath        string
	compareSignificance   float64
	compareFormat         string
	compareInclude        []string
	compareExclude        []string
	compareIncludeNew     bool
	compareIncludeDropped bool
	compareOutput         string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two nested JSON/YAML documents node by node",
	Long: `Compare walks two documents in parallel and categorizes every node as
same, changed, new or dropped. Numeric leaves are compared against a
relative significance threshold rather than strict equality.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareOldPath, "old", "", "path to the original document (required)")
	compareCmd.Flags().StringVar(&compareNewPath, "new", "", "path to the new document (required)")
	compareCmd.Flags().Float64Var(&compareSignificance, "significance", differ.DefaultSignificance, "relative threshold for significant numeric change")
	compareCmd.Flags().StringVar(&compareFormat, "format", "table", "output format: table, json, report or flat")
	compareCmd.Flags().StringSliceVar(&compareInclude, "include", nil, "only include flat paths matching these patterns")
	compareCmd.Flags().StringSliceVar(&compareExclude, "exclude", nil, "drop flat paths matching these patterns")
	compareCmd.Flags().BoolVar(&compareIncludeNew, "include-new", true, "include new keys in flat output")
	compareCmd.Flags().BoolVar(&compareIncludeDropped, "include-dropped", false, "include dropped keys in flat output")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "write output to file instead of stdout")
	_ = compareCmd.MarkFlagRequired("old")
	_ = compareCmd.MarkFlagRequired("new")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	oldDoc, err := parser.ParseFile(compareOldPath)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", compareOldPath)
	}
	newDoc, err := parser.ParseFile(compareNewPath)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", compareNewPath)
	}

	result, err := differ.Compare(oldDoc, newDoc, differ.WithSignificance(compareSignificance))
	if err != nil {
		return err
	}

	var rendered string
	switch compareFormat {
	case "json":
		data, err := renderer.JSON(result)
		if err != nil {
			return err
		}
		rendered = string(data)
	case "table":
		rendered = renderer.Table(result)
	case "report":
		meta := renderer.Meta{
			Tool:        "toolchest",
			OldPath:     compareOldPath,
			NewPath:     compareNewPath,
			GeneratedAt: time.Now(),
		}
		rendered = renderer.Report(result, meta, flattenOptions())
	case "flat":
		flat := export.Flatten(result, flattenOptions())
		rendered = renderer.FlatTSV(flat, baseName(compareOldPath), baseName(compareNewPath))
	default:
		return fmt.Errorf("unknown format %q", compareFormat)
	}

	if compareOutput != "" {
		return os.WriteFile(compareOutput, []byte(rendered), 0644)
	}
	fmt.Print(rendered)
	return nil
}

func flattenOptions() export.Options {
	return export.Options{
		Include:        compareInclude,
		Exclude:        compareExclude,
		IncludeNew:     compareIncludeNew,
		IncludeDropped: compareIncludeDropped,
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
