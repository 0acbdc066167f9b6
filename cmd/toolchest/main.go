package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolchest",
	Short: "Tools for addressing, comparing and retrieving nested data",
	Long: `Toolchest flattens nested JSON/YAML documents into addressed values,
performs node-by-node semantic comparison between two documents, compares
delimited results files, and maintains a local archive of remote day-records.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
