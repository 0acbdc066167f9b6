// Package renderer formats comparison results for humans and for the
// tab-separated comparison logs downstream tooling consumes.
package renderer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/LClos/data-toolchest/pkg/differ"
	"github.com/LClos/data-toolchest/pkg/export"
)

// reportOrder is the category-major row order of the comparison log.
var reportOrder = []differ.Category{
	differ.CategoryChanged,
	differ.CategorySame,
	differ.CategoryNew,
	differ.CategoryDropped,
}

var reportHeaders = []string{"key_tag", "old_value", "old_type", "new_value", "new_type", "diff_message"}

// Meta describes the comparison run for the report header.
type Meta struct {
	Tool        string
	OldPath     string
	NewPath     string
	GeneratedAt time.Time
}

// Report renders the tab-separated comparison log: a comment header naming
// the inputs, a column header row, then one row per record in category-major
// order. Include/exclude filters from opts apply to record paths.
func Report(res *differ.Result, meta Meta, opts export.Options) string {
	var buf bytes.Buffer

	tool := meta.Tool
	if tool == "" {
		tool = "toolchest"
	}
	at := meta.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	fmt.Fprintf(&buf, "- %s\n", tool)
	fmt.Fprintf(&buf, "- comparison generated on %s\n", at.Format("20060102-15:04"))
	fmt.Fprintf(&buf, "- original: %s\n", meta.OldPath)
	fmt.Fprintf(&buf, "- new: %s\n", meta.NewPath)
	fmt.Fprintf(&buf, "compare_result\t%s\n", strings.Join(reportHeaders, "\t"))

	for _, cat := range reportOrder {
		for _, rec := range res.Records(cat) {
			if !export.Match(rec.Path, opts) {
				continue
			}
			fmt.Fprintf(&buf, "%s\t%s\t%v\t%s\t%v\t%s\t%s\n",
				cat, rec.Path, rec.OldValue, rec.OldType, rec.NewValue, rec.NewType, rec.Message)
		}
	}
	return buf.String()
}

// FlatTSV renders a flattened old/new map as a two-row wide table: one header
// row with <path>_OLD and <path>_NEW columns, one value row. Columns are
// sorted by path.
func FlatTSV(flat map[string]export.OldNew, oldName, newName string) string {
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	buf.WriteString("old_input\tnew_input")
	for _, p := range paths {
		fmt.Fprintf(&buf, "\t%s_OLD\t%s_NEW", p, p)
	}
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "%s\t%s", oldName, newName)
	for _, p := range paths {
		fmt.Fprintf(&buf, "\t%v\t%v", flat[p].Old, flat[p].New)
	}
	buf.WriteByte('\n')
	return buf.String()
}

// JSON renders the full result as indented JSON.
func JSON(res *differ.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var categoryColors = map[differ.Category]*color.Color{
	differ.CategorySame:    color.New(color.Faint),
	differ.CategoryChanged: color.New(color.FgYellow),
	differ.CategoryNew:     color.New(color.FgGreen),
	differ.CategoryDropped: color.New(color.FgRed),
}

var categoryMarkers = map[differ.Category]string{
	differ.CategorySame:    "=",
	differ.CategoryChanged: "~",
	differ.CategoryNew:     "+",
	differ.CategoryDropped: "-",
}

// Table renders a human-readable section-per-category summary. Category
// markers are colorized when the output supports it.
func Table(res *differ.Result) string {
	var buf bytes.Buffer

	buf.WriteString("Nested Data Comparison\n")
	buf.WriteString("======================\n\n")
	buf.WriteString("Summary:\n")
	fmt.Fprintf(&buf, "  changed: %d\n", len(res.Changed))
	fmt.Fprintf(&buf, "  new:     %d\n", len(res.New))
	fmt.Fprintf(&buf, "  dropped: %d\n", len(res.Dropped))
	fmt.Fprintf(&buf, "  same:    %d\n", len(res.Same))

	for _, cat := range reportOrder {
		records := res.Records(cat)
		if len(records) == 0 || cat == differ.CategorySame {
			continue
		}
		fmt.Fprintf(&buf, "\n%s:\n", titleCase(string(cat)))
		for _, rec := range records {
			marker := categoryColors[cat].Sprintf("[%s]", categoryMarkers[cat])
			fmt.Fprintf(&buf, "  %s %s: %s\n", marker, rec.Path, rec.Message)
		}
	}
	return buf.String()
}
