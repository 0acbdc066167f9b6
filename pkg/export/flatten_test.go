package export

import (
	"testing"

	"github.com/LClos/data-toolchest/pkg/differ"
)

func sampleResult(t *testing.T) *differ.Result {
	t.Helper()
	res, err := differ.Compare(
		map[string]interface{}{"kept": 1, "drifted": 100, "gone": true},
		map[string]interface{}{"kept": 1, "drifted": 50, "added": "x"},
	)
	if err != nil {
		t.Fatalf("building result: %v", err)
	}
	return res
}

func TestFlattenDefaults(t *testing.T) {
	flat := Flatten(sampleResult(t), DefaultOptions())

	want := map[string]OldNew{
		"kept":    {Old: 1, New: 1},
		"drifted": {Old: 100, New: 50},
		"added":   {Old: differ.AbsentMarker, New: "x"},
	}
	if len(flat) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), flat)
	}
	for path, pair := range want {
		if flat[path] != pair {
			t.Errorf("path %s: expected %v, got %v", path, pair, flat[path])
		}
	}
	if _, ok := flat["gone"]; ok {
		t.Error("dropped paths must be excluded by default")
	}
}

func TestFlattenIncludeDropped(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeDropped = true
	flat := Flatten(sampleResult(t), opts)
	if pair, ok := flat["gone"]; !ok || pair.New != differ.AbsentMarker {
		t.Errorf("expected dropped path with absent new side, got %v", flat)
	}
}

func TestMatchFilters(t *testing.T) {
	tests := []struct {
		name string
		path string
		opts Options
		want bool
	}{
		{"no filters", "a.b", Options{}, true},
		{"substring include", "history.observations[0].tempm", Options{Include: []string{"tempm"}}, true},
		{"include misses", "history.date", Options{Include: []string{"tempm"}}, false},
		{"glob include", "rows[3].id", Options{Include: []string{"rows[*].id"}}, true},
		{"exclude wins", "meta.tempm", Options{Include: []string{"tempm"}, Exclude: []string{"meta"}}, false},
		{"substring exclude", "a.internal.b", Options{Exclude: []string{"internal"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.path, tt.opts); got != tt.want {
				t.Errorf("Match(%q, %+v) = %v, want %v", tt.path, tt.opts, got, tt.want)
			}
		})
	}
}
