package renderer

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/LClos/data-toolchest/pkg/differ"
	"github.com/LClos/data-toolchest/pkg/export"
)

func sampleResult(t *testing.T) *differ.Result {
	t.Helper()
	res, err := differ.Compare(
		map[string]interface{}{"stable": "x", "drifted": 100, "gone": 1},
		map[string]interface{}{"stable": "x", "drifted": 50, "added": true},
	)
	if err != nil {
		t.Fatalf("building result: %v", err)
	}
	return res
}

func TestReport(t *testing.T) {
	meta := Meta{
		Tool:        "toolchest",
		OldPath:     "old.json",
		NewPath:     "new.json",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	out := Report(sampleResult(t), meta, export.Options{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	wantPrefix := []string{
		"- toolchest",
		"- comparison generated on 20260314-09:30",
		"- original: old.json",
		"- new: new.json",
		"compare_result\tkey_tag\told_value\told_type\tnew_value\tnew_type\tdiff_message",
	}
	for i, want := range wantPrefix {
		if lines[i] != want {
			t.Errorf("line %d: expected %q, got %q", i, want, lines[i])
		}
	}

	// One row per record, category-major: changed, same, new, dropped.
	rows := lines[len(wantPrefix):]
	if len(rows) != 4 {
		t.Fatalf("expected 4 data rows, got %v", rows)
	}
	wantStarts := []string{"changed\tdrifted\t", "same\tstable\t", "new\tadded\t", "dropped\tgone\t"}
	for i, prefix := range wantStarts {
		if !strings.HasPrefix(rows[i], prefix) {
			t.Errorf("row %d: expected prefix %q, got %q", i, prefix, rows[i])
		}
	}
}

func TestReportAppliesFilters(t *testing.T) {
	out := Report(sampleResult(t), Meta{}, export.Options{Exclude: []string{"drifted"}})
	if strings.Contains(out, "drifted") {
		t.Errorf("expected drifted rows to be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "stable") {
		t.Errorf("expected stable row to survive, got:\n%s", out)
	}
}

func TestFlatTSV(t *testing.T) {
	flat := map[string]export.OldNew{
		"b.second": {Old: 2, New: 3},
		"a.first":  {Old: "x", New: "y"},
	}
	out := FlatTSV(flat, "old_run", "new_run")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and value rows, got %v", lines)
	}
	if lines[0] != "old_input\tnew_input\ta.first_OLD\ta.first_NEW\tb.second_OLD\tb.second_NEW" {
		t.Errorf("unexpected header row %q", lines[0])
	}
	if lines[1] != "old_run\tnew_run\tx\ty\t2\t3" {
		t.Errorf("unexpected value row %q", lines[1])
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := JSON(sampleResult(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string][]map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded["changed"]) != 1 || decoded["changed"][0]["key_tag"] != "drifted" {
		t.Errorf("unexpected changed records: %v", decoded["changed"])
	}
}

func TestTable(t *testing.T) {
	out := Table(sampleResult(t))
	for _, want := range []string{
		"changed: 1",
		"new:     1",
		"dropped: 1",
		"same:    1",
		"Changed:",
		"New:",
		"Dropped:",
		"drifted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Same:") {
		t.Error("same records must not get their own section")
	}
}
