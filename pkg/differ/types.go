package differ

// Category classifies the outcome of comparing one node of the old tree
// against the same node of the new tree.
type Category string

const (
	CategorySame    Category = "same"
	CategoryChanged Category = "changed"
	CategoryNew     Category = "new"
	CategoryDropped Category = "dropped"
)

// AllCategories lists every category in result order.
var AllCategories = []Category{CategorySame, CategoryChanged, CategoryNew, CategoryDropped}

// Placeholder tokens rendered for container values; record consumers get
// these instead of full nested content.
const (
	ObjectPlaceholder = "{...}"
	ArrayPlaceholder  = "[...]"
	// AbsentMarker stands in for the value and type of a side that does not
	// exist at the record's path.
	AbsentMarker = "-"
	// NullToken renders a present null value, keeping Go's <nil> out of
	// reports.
	NullToken = "null"
)

// Record is the comparison finding for a single node.
type Record struct {
	Path     string      `json:"key_tag"`
	OldValue interface{} `json:"old_value"`
	OldType  string      `json:"old_type"`
	NewValue interface{} `json:"new_value"`
	NewType  string      `json:"new_type"`
	Message  string      `json:"diff_message"`
	Category Category    `json:"category"`
}

// Result holds every record of a comparison run, bucketed by category.
// Within a bucket, records appear in traversal order.
type Result struct {
	Same    []Record `json:"same"`
	Changed []Record `json:"changed"`
	New     []Record `json:"new"`
	Dropped []Record `json:"dropped"`
}

func newResult() *Result {
	return &Result{
		Same:    []Record{},
		Changed: []Record{},
		New:     []Record{},
		Dropped: []Record{},
	}
}

func (r *Result) add(rec Record) {
	switch rec.Category {
	case CategoryChanged:
		r.Changed = append(r.Changed, rec)
	case CategoryNew:
		r.New = append(r.New, rec)
	case CategoryDropped:
		r.Dropped = append(r.Dropped, rec)
	default:
		r.Same = append(r.Same, rec)
	}
}

// Records returns the bucket for a category.
func (r *Result) Records(c Category) []Record {
	switch c {
	case CategorySame:
		return r.Same
	case CategoryChanged:
		return r.Changed
	case CategoryNew:
		return r.New
	case CategoryDropped:
		return r.Dropped
	}
	return nil
}

// Total counts records across all categories.
func (r *Result) Total() int {
	return len(r.Same) + len(r.Changed) + len(r.New) + len(r.Dropped)
}

// HasChanges reports whether any node landed outside the same bucket.
func (r *Result) HasChanges() bool {
	return len(r.Changed) > 0 || len(r.New) > 0 || len(r.Dropped) > 0
}
