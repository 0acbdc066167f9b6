package results

import (
	"errors"
	"strings"
	"testing"
)

const oldResults = `SAMPLE_ID	COVERAGE	RATIO	CALL
s1	100	0.50	PASS
s2	80	0.25	PASS
s3	60	0.10	FAIL
`

const newResults = `SAMPLE_ID	COVERAGE	RATIO	CALL
s1	91	0.50	PASS
s2	80	0.75	WARN
`

func mustParse(t *testing.T, in string, opts Options) *Table {
	t.Helper()
	table, err := Parse(strings.NewReader(in), opts)
	if err != nil {
		t.Fatalf("parsing table: %v", err)
	}
	return table
}

func TestParse(t *testing.T) {
	table := mustParse(t, oldResults, Options{})
	if table.IDColumn != DefaultIDColumn {
		t.Errorf("expected default ID column, got %s", table.IDColumn)
	}
	if len(table.Columns) != 3 || table.Columns[0] != "COVERAGE" {
		t.Errorf("unexpected columns %v", table.Columns)
	}
	if got := table.Rows["s2"]["RATIO"]; got != "0.25" {
		t.Errorf("expected s2 RATIO 0.25, got %q", got)
	}
	if ids := table.IDs(); len(ids) != 3 || ids[0] != "s1" {
		t.Errorf("unexpected IDs %v", ids)
	}
}

func TestParseCustomDelimiterAndComments(t *testing.T) {
	in := "# run metadata\nID,VALUE\na,1\n"
	table := mustParse(t, in, Options{Delimiter: ',', IDColumn: "ID"})
	if table.Rows["a"]["VALUE"] != "1" {
		t.Errorf("unexpected rows %v", table.Rows)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for empty input, got %v", err)
	}
	if _, err := Parse(strings.NewReader("SAMPLE_ID\ns1\n"), Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for ID-only header, got %v", err)
	}
	if _, err := Parse(strings.NewReader("A\tB\n1\t2\n"), Options{}); err == nil {
		t.Error("expected error for missing ID column")
	}
}

func TestCompare(t *testing.T) {
	oldTable := mustParse(t, oldResults, Options{})
	newTable := mustParse(t, newResults, Options{})

	cmp, err := Compare(oldTable, newTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCells := map[string]map[string]string{
		"s1": {"COVERAGE": "9", "RATIO": "0", "CALL": "TRUE(PASS-PASS)"},
		"s2": {"COVERAGE": "0", "RATIO": "-0.5", "CALL": "FALSE(PASS-WARN)"},
		"s3": {"COVERAGE": "NA", "RATIO": "NA", "CALL": "NA"},
	}
	for id, wantRow := range wantCells {
		for col, want := range wantRow {
			if got := cmp.Cells[id][col]; got != want {
				t.Errorf("cell %s/%s: expected %q, got %q", id, col, want, got)
			}
		}
	}

	wantLogged := []string{
		"s1-COVERAGE value differs by 9",
		"s2-CALL text values differ (PASS-WARN)",
		"sample s3 results not found in new results file",
	}
	joined := strings.Join(cmp.Log, "\n")
	for _, want := range wantLogged {
		if !strings.Contains(joined, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, joined)
		}
	}
}

func TestCompareMissingColumn(t *testing.T) {
	oldTable := mustParse(t, "ID\tA\tB\nx\t1\t2\n", Options{IDColumn: "ID"})
	newTable := mustParse(t, "ID\tA\nx\t1\n", Options{IDColumn: "ID"})

	cmp, err := Compare(oldTable, newTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp.Cells["x"]["B"] != "NA" {
		t.Errorf("expected NA for missing column, got %q", cmp.Cells["x"]["B"])
	}
	if len(cmp.Log) != 1 || !strings.Contains(cmp.Log[0], "value B missing") {
		t.Errorf("expected missing-column log line, got %v", cmp.Log)
	}
}

func TestComparisonTSV(t *testing.T) {
	oldTable := mustParse(t, oldResults, Options{})
	newTable := mustParse(t, newResults, Options{})
	cmp, err := Compare(oldTable, newTable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(cmp.TSV(), "\n"), "\n")
	if lines[0] != "SAMPLE_ID\tCOVERAGE\tRATIO\tCALL" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != 4 {
		t.Errorf("expected 3 data rows, got %v", lines[1:])
	}
	if lines[1] != "s1\t9\t0\tTRUE(PASS-PASS)" {
		t.Errorf("unexpected s1 row %q", lines[1])
	}
}
