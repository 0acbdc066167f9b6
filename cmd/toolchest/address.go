package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LClos/data-toolchest/pkg/address"
	"github.com/LClos/data-toolchest/pkg/parser"
)

var (
	addressOp        string
	addressFindKey   string
	addressFindIndex int
	addressFindValue string
	addressAddresses bool
)

var addressCmd = &cobra.Command{
	Use:   "address FILE [FILE...]",
	Short: "Flatten documents into addressed value sets and combine them",
	Long: `Address walks each document into a set of (address, value) pairs and
combines the sets with the requested operation. The result can be
filtered by address component or by value.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddress,
}

func init() {
	addressCmd.Flags().StringVar(&addressOp, "op", "union", "set operation: union, intersection, difference or symmetric-difference")
	addressCmd.Flags().StringVar(&addressFindKey, "find-key", "", "only print addresses containing this object key")
	addressCmd.Flags().IntVar(&addressFindIndex, "find-index", -1, "only print addresses containing this array index")
	addressCmd.Flags().StringVar(&addressFindValue, "find-value", "", "only print pairs whose value equals this JSON scalar")
	addressCmd.Flags().BoolVar(&addressAddresses, "addresses", false, "print unique addresses instead of (address, value) pairs")
	rootCmd.AddCommand(addressCmd)
}

func runAddress(cmd *cobra.Command, args []string) error {
	first, rest, err := loadDocuments(args)
	if err != nil {
		return err
	}

	set, err := address.New(first)
	if err != nil {
		return err
	}
	switch addressOp {
	case "union":
		set, err = set.Union(rest...)
	case "intersection":
		set, err = set.Intersection(rest...)
	case "difference":
		set, err = set.Difference(rest...)
	case "symmetric-difference":
		set, err = set.SymmetricDifference(rest...)
	default:
		return fmt.Errorf("unknown set operation %q", addressOp)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if addressFindKey != "" || addressFindIndex >= 0 {
		component := address.Key(addressFindKey)
		if addressFindIndex >= 0 {
			component = address.Index(addressFindIndex)
		}
		for addr, val := range set.FindComponent(component) {
			fmt.Fprintf(out, "(%s, %v)\n", addr, val)
		}
		return nil
	}

	if addressFindValue != "" {
		target, err := parser.Parse([]byte(addressFindValue), parser.FormatJSON)
		if err != nil {
			return errors.Wrapf(err, "parsing --find-value %q", addressFindValue)
		}
		for addr, val := range set.FindValue(target) {
			fmt.Fprintf(out, "(%s, %v)\n", addr, val)
		}
		return nil
	}

	if addressAddresses {
		for _, addr := range set.Addresses() {
			fmt.Fprintln(out, addr)
		}
		return nil
	}

	for av := range set.All() {
		fmt.Fprintln(out, av)
	}
	return nil
}

func loadDocuments(paths []string) (interface{}, []interface{}, error) {
	docs := make([]interface{}, 0, len(paths))
	for _, path := range paths {
		doc, err := parser.ParseFile(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing %s", path)
		}
		docs = append(docs, doc)
	}
	return docs[0], docs[1:], nil
}
