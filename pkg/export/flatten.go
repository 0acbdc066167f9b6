// Package export flattens comparison results into path-keyed old/new value
// pairs for downstream reporting.
package export

import (
	"strings"

	"github.com/ryanuber/go-glob"

	"github.com/LClos/data-toolchest/pkg/differ"
)

// OldNew carries the two sides of one flattened path.
type OldNew struct {
	Old interface{} `json:"OLD"`
	New interface{} `json:"NEW"`
}

// Options controls which records make it into the flat view. Include and
// Exclude are matched as substrings of the record path; a pattern containing
// a '*' is treated as a glob instead.
type Options struct {
	Include        []string
	Exclude        []string
	IncludeNew     bool
	IncludeDropped bool
}

// DefaultOptions mirrors the historical export defaults: changed, same and
// new records are flattened, dropped records are not.
func DefaultOptions() Options {
	return Options{IncludeNew: true}
}

// Flatten projects a comparison result to a map from path to {OLD, NEW}
// values. Categories changed and same are always included; new and dropped
// only on request. Later categories win when a path repeats.
func Flatten(res *differ.Result, opts Options) map[string]OldNew {
	categories := []differ.Category{differ.CategoryChanged, differ.CategorySame}
	if opts.IncludeNew {
		categories = append(categories, differ.CategoryNew)
	}
	if opts.IncludeDropped {
		categories = append(categories, differ.CategoryDropped)
	}

	out := make(map[string]OldNew)
	for _, cat := range categories {
		for _, rec := range res.Records(cat) {
			if !Match(rec.Path, opts) {
				continue
			}
			out[rec.Path] = OldNew{Old: rec.OldValue, New: rec.NewValue}
		}
	}
	return out
}

// Match applies the include/exclude filters to a record path. An empty
// include list admits everything; exclusion wins over inclusion.
func Match(path string, opts Options) bool {
	for _, pat := range opts.Exclude {
		if matchOne(pat, path) {
			return false
		}
	}
	if len(opts.Include) == 0 {
		return true
	}
	for _, pat := range opts.Include {
		if matchOne(pat, path) {
			return true
		}
	}
	return false
}

func matchOne(pattern, path string) bool {
	if strings.Contains(pattern, glob.GLOB) {
		return glob.Glob(pattern, path)
	}
	return glob.Glob(glob.GLOB+pattern+glob.GLOB, path)
}
