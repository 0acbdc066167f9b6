// Package differ compares two parsed nested-data trees node by node,
// classifying every node as same, changed, new or dropped. Divergence between
// the trees is always recorded as data; errors are reserved for malformed
// calls into the engine.
package differ

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/LClos/data-toolchest/pkg/address"
	"github.com/LClos/data-toolchest/pkg/tree"
)

// DefaultSignificance is the fraction of the old value's magnitude a numeric
// difference must exceed to count as a change.
const DefaultSignificance = 0.10

// ErrBothAbsent flags a comparison call where neither side exists. This is a
// programming error in the caller, never a property of the input trees.
var ErrBothAbsent = errors.New("old and new values both absent")

type config struct {
	significance float64
}

// Option adjusts the comparison configuration.
type Option func(*config)

// WithSignificance sets the significance fraction applied uniformly at every
// nesting level.
func WithSignificance(frac float64) Option {
	return func(c *config) {
		c.significance = frac
	}
}

// Slot is the tri-state holder for one side of a comparison: a value can be
// present (including present-and-null or present-and-false) or absent.
type Slot struct {
	Value   interface{}
	Present bool
}

// Present wraps a value that exists on its side.
func Present(v interface{}) Slot {
	return Slot{Value: v, Present: true}
}

// Absent marks a side that has no value at the node.
func Absent() Slot {
	return Slot{}
}

// Compare walks two parsed trees and returns the categorized findings for
// every node. It fails only on contract violations: invalid input trees or a
// negative significance fraction.
func Compare(oldTree, newTree interface{}, opts ...Option) (*Result, error) {
	return CompareSlots(Present(oldTree), Present(newTree), opts...)
}

// CompareSlots is the low-level entry point that additionally allows one side
// to be absent, e.g. to diff a subtree against nothing. At least one side
// must be present.
func CompareSlots(oldSlot, newSlot Slot, opts ...Option) (*Result, error) {
	cfg := config{significance: DefaultSignificance}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.significance < 0 {
		return nil, fmt.Errorf("significance fraction must be non-negative, got %v", cfg.significance)
	}
	if !oldSlot.Present && !newSlot.Present {
		return nil, ErrBothAbsent
	}
	if oldSlot.Present {
		if err := tree.Validate(oldSlot.Value); err != nil {
			return nil, fmt.Errorf("old tree: %w", err)
		}
	}
	if newSlot.Present {
		if err := tree.Validate(newSlot.Value); err != nil {
			return nil, fmt.Errorf("new tree: %w", err)
		}
	}

	c := &comparator{cfg: cfg, result: newResult()}
	if err := c.compare(address.Address{}, oldSlot, newSlot); err != nil {
		return nil, err
	}
	return c.result, nil
}

type comparator struct {
	cfg    config
	result *Result
}

// compare classifies the node at the given path and recurses into container
// children. Every visited node except an object at the synthetic root
// appends exactly one record.
func (c *comparator) compare(at address.Address, oldSlot, newSlot Slot) error {
	if !oldSlot.Present && !newSlot.Present {
		return fmt.Errorf("%w at %q", ErrBothAbsent, at.String())
	}

	oldKind := kindOf(oldSlot)
	newKind := kindOf(newSlot)

	category := CategorySame
	var msgs []string
	switch {
	case !oldSlot.Present:
		category = CategoryNew
		msgs = append(msgs, "key not present in original input")
	case !newSlot.Present:
		category = CategoryDropped
		msgs = append(msgs, "key not present in new input")
	case oldKind != newKind:
		category = CategoryChanged
		msgs = append(msgs, fmt.Sprintf("value type changed from %s to %s", oldKind, newKind))
	default:
		msgs = append(msgs, fmt.Sprintf("value type %s unchanged", oldKind))
	}

	if isContainerSlot(oldSlot, oldKind) || isContainerSlot(newSlot, newKind) {
		return c.drilldown(at, oldSlot, newSlot, oldKind, newKind, category, msgs)
	}

	if oldSlot.Present && newSlot.Present {
		category, msgs = c.leafDiff(oldSlot.Value, newSlot.Value, oldKind, newKind, category, msgs)
	}

	c.result.add(Record{
		Path:     at.String(),
		OldValue: renderValue(oldSlot, oldKind),
		OldType:  renderType(oldSlot, oldKind),
		NewValue: renderValue(newSlot, newKind),
		NewType:  renderType(newSlot, newKind),
		Message:  strings.Join(msgs, "; "),
		Category: category,
	})
	return nil
}

// leafDiff applies the scalar comparison rules: numeric coercion with the
// significance threshold first, exact comparison for string pairs, and strict
// equality for everything else.
func (c *comparator) leafDiff(oldVal, newVal interface{}, oldKind, newKind tree.Kind, category Category, msgs []string) (Category, []string) {
	oldF, oldOK := tree.Float(oldVal)
	newF, newOK := tree.Float(newVal)

	switch {
	case oldOK && newOK:
		diff := oldF - newF
		threshold := math.Abs(oldF * c.cfg.significance)
		if math.Abs(diff) <= threshold {
			msgs = append(msgs, fmt.Sprintf("numeric difference of %v (not significant)", diff))
		} else {
			msgs = append(msgs, fmt.Sprintf("numeric difference of %v (significant)", diff))
			category = CategoryChanged
		}
	case oldKind == tree.KindString && newKind == tree.KindString:
		if oldVal.(string) == newVal.(string) {
			msgs = append(msgs, "string value unchanged")
		} else {
			msgs = append(msgs, fmt.Sprintf("string value changed (%q - %q)", oldVal, newVal))
			category = CategoryChanged
		}
	default:
		// Incomparable kinds: strict equality decides. Equal booleans or
		// nulls stay same; anything else is a change.
		if oldKind == newKind && strictEqual(oldVal, newVal, oldKind) {
			msgs = append(msgs, "value unchanged")
		} else {
			msgs = append(msgs, "cannot compare values")
			category = CategoryChanged
		}
	}
	return category, msgs
}

// drilldown emits the container summary record and recurses into the union
// of both sides' children. When the sides disagree on container kind, object
// keys are visited first, then array indices.
func (c *comparator) drilldown(at address.Address, oldSlot, newSlot Slot, oldKind, newKind tree.Kind, category Category, msgs []string) error {
	var oldFields, newFields map[string]interface{}
	var oldKeys, newKeys []string
	if oldKind == tree.KindObject {
		oldFields = tree.Fields(oldSlot.Value)
		oldKeys = sortedKeys(oldFields)
	}
	if newKind == tree.KindObject {
		newFields = tree.Fields(newSlot.Value)
		newKeys = sortedKeys(newFields)
	}

	var oldArr, newArr []interface{}
	if oldKind == tree.KindArray {
		oldArr = oldSlot.Value.([]interface{})
	}
	if newKind == tree.KindArray {
		newArr = newSlot.Value.([]interface{})
	}

	objectSide := oldKind == tree.KindObject || newKind == tree.KindObject
	arraySide := oldKind == tree.KindArray || newKind == tree.KindArray

	if category != CategoryNew && category != CategoryDropped {
		if objectSide {
			switch {
			case len(oldKeys) != len(newKeys):
				category = CategoryChanged
				msgs = append(msgs, fmt.Sprintf("object key count changed from %d to %d", len(oldKeys), len(newKeys)))
			case !slices.Equal(oldKeys, newKeys):
				category = CategoryChanged
				msgs = append(msgs, "object key set changed")
			default:
				msgs = append(msgs, "object keys unchanged, contents evaluated separately")
			}
		}
		if arraySide {
			if len(oldArr) != len(newArr) {
				category = CategoryChanged
				msgs = append(msgs, fmt.Sprintf("array element count changed from %d to %d", len(oldArr), len(newArr)))
			} else {
				msgs = append(msgs, "array element count unchanged, contents evaluated separately")
			}
		}
	}

	// The synthetic root produces no object summary of its own; an array at
	// the root still reports its element count.
	if len(at) > 0 || arraySide {
		c.result.add(Record{
			Path:     at.String(),
			OldValue: renderValue(oldSlot, oldKind),
			OldType:  renderType(oldSlot, oldKind),
			NewValue: renderValue(newSlot, newKind),
			NewType:  renderType(newSlot, newKind),
			Message:  strings.Join(msgs, "; "),
			Category: category,
		})
	}

	if objectSide {
		for _, key := range sortedUnion(oldKeys, newKeys) {
			childOld := Absent()
			if v, ok := oldFields[key]; ok {
				childOld = Present(v)
			}
			childNew := Absent()
			if v, ok := newFields[key]; ok {
				childNew = Present(v)
			}
			if err := c.compare(at.Child(key), childOld, childNew); err != nil {
				return err
			}
		}
	}
	if arraySide {
		for i := 0; i < max(len(oldArr), len(newArr)); i++ {
			childOld := Absent()
			if i < len(oldArr) {
				childOld = Present(oldArr[i])
			}
			childNew := Absent()
			if i < len(newArr) {
				childNew = Present(newArr[i])
			}
			if err := c.compare(at.At(i), childOld, childNew); err != nil {
				return err
			}
		}
	}
	return nil
}

func kindOf(s Slot) tree.Kind {
	if !s.Present {
		return tree.KindInvalid
	}
	return tree.KindOf(s.Value)
}

func isContainerSlot(s Slot, k tree.Kind) bool {
	return s.Present && tree.IsContainer(k)
}

func renderValue(s Slot, k tree.Kind) interface{} {
	if !s.Present {
		return AbsentMarker
	}
	switch k {
	case tree.KindObject:
		return ObjectPlaceholder
	case tree.KindArray:
		return ArrayPlaceholder
	case tree.KindNull:
		return NullToken
	}
	return s.Value
}

func renderType(s Slot, k tree.Kind) string {
	if !s.Present {
		return AbsentMarker
	}
	return string(k)
}

// strictEqual compares two values of the same non-container, non-string
// kind without coercion.
func strictEqual(a, b interface{}, k tree.Kind) bool {
	switch k {
	case tree.KindNull:
		return true
	case tree.KindBoolean:
		return a.(bool) == b.(bool)
	case tree.KindInteger:
		return tree.AsInt(a) == tree.AsInt(b)
	case tree.KindNumber:
		af, _ := tree.Float(a)
		bf, _ := tree.Float(b)
		return af == bf
	case tree.KindString:
		return a.(string) == b.(string)
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnion(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, k := range a {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, k := range b {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
