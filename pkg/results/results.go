// Package results compares delimited results files produced by different
// analyses of the same source data, keyed by a sample-identifier column.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// DefaultIDColumn is the header tag identifying the key column.
const DefaultIDColumn = "SAMPLE_ID"

// ErrEmpty is returned when a results file holds no rows or no result
// columns.
var ErrEmpty = errors.New("results file holds no results")

// Options controls parsing of a delimited results file.
type Options struct {
	// Delimiter between fields; tab when zero.
	Delimiter rune
	// IDColumn names the key column; DefaultIDColumn when empty.
	IDColumn string
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = '\t'
	}
	if o.IDColumn == "" {
		o.IDColumn = DefaultIDColumn
	}
	return o
}

// Table is a parsed results file: one row of result cells per ID.
type Table struct {
	IDColumn string
	Columns  []string
	Rows     map[string]map[string]string
}

// Parse reads a delimited results file. The first row is the header and must
// contain the ID column; every other header becomes a result column.
func Parse(r io.Reader, opts Options) (*Table, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited results: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrEmpty)
	}

	header := records[0]
	idIdx := -1
	for i, h := range header {
		if h == opts.IDColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("ID column %q not found in header", opts.IDColumn)
	}

	columns := make([]string, 0, len(header)-1)
	for i, h := range header {
		if i != idIdx {
			columns = append(columns, h)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no result columns", ErrEmpty)
	}

	t := &Table{IDColumn: opts.IDColumn, Columns: columns, Rows: make(map[string]map[string]string)}
	for _, row := range records[1:] {
		if idIdx >= len(row) {
			continue
		}
		id := row[idIdx]
		cells := make(map[string]string, len(columns))
		col := 0
		for i, v := range row {
			if i == idIdx {
				continue
			}
			if col < len(columns) {
				cells[columns[col]] = v
			}
			col++
		}
		t.Rows[id] = cells
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrEmpty)
	}
	return t, nil
}

// IDs returns the row keys in sorted order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.Rows))
	for id := range t.Rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Comparison holds the cell-by-cell comparison of two tables. Cells carry a
// signed numeric delta when both values are numeric, a TRUE/FALSE marker with
// both values for text cells, or NA when the new table is missing the row or
// column. Log carries one line per explicit difference or missing entry.
type Comparison struct {
	IDColumn string
	Columns  []string
	Cells    map[string]map[string]string
	Log      []string
}

// Compare evaluates every cell of the old table against the new one. The old
// table's IDs and columns drive the comparison, as the original is the
// standard the new results are held against.
func Compare(oldTable, newTable *Table) (*Comparison, error) {
	if oldTable == nil || newTable == nil {
		return nil, errors.New("both tables are required")
	}
	cmp := &Comparison{
		IDColumn: oldTable.IDColumn,
		Columns:  oldTable.Columns,
		Cells:    make(map[string]map[string]string),
	}

	for _, id := range oldTable.IDs() {
		newRow, ok := newTable.Rows[id]
		if !ok {
			cmp.logf("sample %s results not found in new results file", id)
			cmp.Cells[id] = naRow(oldTable.Columns)
			continue
		}
		oldRow := oldTable.Rows[id]
		cells := make(map[string]string, len(oldTable.Columns))
		for _, col := range oldTable.Columns {
			newVal, ok := newRow[col]
			if !ok {
				cmp.logf("value %s missing from new results file for sample %s", col, id)
				cells[col] = "NA"
				continue
			}
			cells[col] = cmp.compareCell(id, col, oldRow[col], newVal)
		}
		cmp.Cells[id] = cells
	}
	return cmp, nil
}

func (c *Comparison) compareCell(id, col, oldVal, newVal string) string {
	oldF, oldErr := strconv.ParseFloat(oldVal, 64)
	newF, newErr := strconv.ParseFloat(newVal, 64)
	if oldErr == nil && newErr == nil {
		oldI, iErr1 := strconv.ParseInt(oldVal, 10, 64)
		newI, iErr2 := strconv.ParseInt(newVal, 10, 64)
		if iErr1 == nil && iErr2 == nil {
			delta := oldI - newI
			if delta != 0 {
				c.logf("%s-%s value differs by %d", id, col, delta)
			}
			return strconv.FormatInt(delta, 10)
		}
		delta := oldF - newF
		if delta != 0 {
			c.logf("%s-%s value differs by %v", id, col, delta)
		}
		return strconv.FormatFloat(delta, 'g', -1, 64)
	}

	if oldVal == newVal {
		return fmt.Sprintf("TRUE(%s-%s)", oldVal, newVal)
	}
	c.logf("%s-%s text values differ (%s-%s)", id, col, oldVal, newVal)
	return fmt.Sprintf("FALSE(%s-%s)", oldVal, newVal)
}

func (c *Comparison) logf(format string, args ...interface{}) {
	c.Log = append(c.Log, fmt.Sprintf(format, args...))
}

func naRow(columns []string) map[string]string {
	row := make(map[string]string, len(columns))
	for _, col := range columns {
		row[col] = "NA"
	}
	return row
}

// TSV renders the comparison grid in the same shape as the original results
// file: a header row, then one row of comparison cells per ID.
func (c *Comparison) TSV() string {
	out := c.IDColumn
	for _, col := range c.Columns {
		out += "\t" + col
	}
	out += "\n"

	ids := make([]string, 0, len(c.Cells))
	for id := range c.Cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out += id
		for _, col := range c.Columns {
			out += "\t" + c.Cells[id][col]
		}
		out += "\n"
	}
	return out
}
