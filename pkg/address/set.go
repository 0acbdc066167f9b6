package address

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/LClos/data-toolchest/pkg/tree"
)

// ErrUnsupportedSource is returned when a Set is built from something that is
// neither a parsed tree, an existing *Set, nor a slice of AddressedValue.
var ErrUnsupportedSource = errors.New("unsupported addressed-value source")

// Set is a set of AddressedValue with value semantics: every operation
// returns a new Set and the receiver is never mutated after construction.
// Elements are unique by (address, value) pair, so the same address may occur
// more than once when merged sources carry different values for it.
type Set struct {
	elems map[string]AddressedValue
}

// New builds a Set from zero or more sources, each one of: a parsed tree
// (addressed via Walk), an existing *Set, or a []AddressedValue. All sources
// are combined by union.
func New(sources ...interface{}) (*Set, error) {
	empty := &Set{elems: map[string]AddressedValue{}}
	if len(sources) == 0 {
		return empty, nil
	}
	return empty.Union(sources...)
}

type setOp int

const (
	opUnion setOp = iota
	opIntersection
	opDifference
	opSymmetricDifference
)

// Union returns the union of s and the given sources.
func (s *Set) Union(sources ...interface{}) (*Set, error) {
	return s.combine(opUnion, sources)
}

// Intersection returns the elements present in s and in every source.
func (s *Set) Intersection(sources ...interface{}) (*Set, error) {
	return s.combine(opIntersection, sources)
}

// Difference returns the elements of s present in none of the sources.
func (s *Set) Difference(sources ...interface{}) (*Set, error) {
	return s.combine(opDifference, sources)
}

// SymmetricDifference returns the union of s and the sources minus their
// intersection.
func (s *Set) SymmetricDifference(sources ...interface{}) (*Set, error) {
	return s.combine(opSymmetricDifference, sources)
}

func (s *Set) combine(op setOp, sources []interface{}) (*Set, error) {
	others, err := normalize(sources)
	if err != nil {
		return nil, err
	}
	out := make(map[string]AddressedValue)
	switch op {
	case opUnion:
		for k, v := range s.elems {
			out[k] = v
		}
		for _, other := range others {
			for k, v := range other {
				out[k] = v
			}
		}
	case opIntersection:
		for k, v := range s.elems {
			if inAll(k, others) {
				out[k] = v
			}
		}
	case opDifference:
		for k, v := range s.elems {
			if !inAny(k, others) {
				out[k] = v
			}
		}
	case opSymmetricDifference:
		union, _ := s.combine(opUnion, sources)
		for k, v := range union.elems {
			if _, here := s.elems[k]; here && inAll(k, others) {
				continue
			}
			out[k] = v
		}
	}
	return &Set{elems: out}, nil
}

func inAll(key string, others []map[string]AddressedValue) bool {
	for _, other := range others {
		if _, ok := other[key]; !ok {
			return false
		}
	}
	return true
}

func inAny(key string, others []map[string]AddressedValue) bool {
	for _, other := range others {
		if _, ok := other[key]; ok {
			return true
		}
	}
	return false
}

// normalize converts each source to its element map.
func normalize(sources []interface{}) ([]map[string]AddressedValue, error) {
	out := make([]map[string]AddressedValue, 0, len(sources))
	for _, src := range sources {
		switch v := src.(type) {
		case *Set:
			out = append(out, v.elems)
		case []AddressedValue:
			elems := make(map[string]AddressedValue, len(v))
			for _, av := range v {
				elems[av.key()] = av
			}
			out = append(out, elems)
		default:
			if err := tree.Validate(src); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
			}
			elems := make(map[string]AddressedValue)
			for av := range Walk(src) {
				elems[av.key()] = av
			}
			out = append(out, elems)
		}
	}
	return out, nil
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.elems)
}

// Contains reports whether the exact (address, value) pair is an element.
func (s *Set) Contains(av AddressedValue) bool {
	_, ok := s.elems[av.key()]
	return ok
}

// Equal reports whether two sets hold the same elements.
func (s *Set) Equal(other *Set) bool {
	if len(s.elems) != len(other.elems) {
		return false
	}
	for k := range s.elems {
		if _, ok := other.elems[k]; !ok {
			return false
		}
	}
	return true
}

// All yields the elements in a stable (sorted) order.
func (s *Set) All() iter.Seq[AddressedValue] {
	return func(yield func(AddressedValue) bool) {
		for _, k := range s.sortedKeys() {
			if !yield(s.elems[k]) {
				return
			}
		}
	}
}

// Addresses projects the set to its unique addresses: differing values at the
// same path collapse to one address. The result is sorted by rendered path.
func (s *Set) Addresses() []Address {
	seen := make(map[string]Address)
	for _, av := range s.elems {
		seen[av.Address.key()] = av.Address
	}
	out := make([]Address, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

// FindComponent lazily yields the (address, value) pairs whose address
// contains the given component anywhere. Matching is exact on component kind.
func (s *Set) FindComponent(c Component) iter.Seq2[Address, interface{}] {
	return func(yield func(Address, interface{}) bool) {
		for _, k := range s.sortedKeys() {
			av := s.elems[k]
			if !av.Address.Contains(c) {
				continue
			}
			if !yield(av.Address, av.Value) {
				return
			}
		}
	}
}

// FindValue lazily yields the (address, value) pairs whose value equals
// target with the identical semantic kind: the integer 3 matches neither the
// string "3" nor the boolean true.
func (s *Set) FindValue(target interface{}) iter.Seq2[Address, interface{}] {
	want := valueKey(target)
	return func(yield func(Address, interface{}) bool) {
		for _, k := range s.sortedKeys() {
			av := s.elems[k]
			if valueKey(av.Value) != want {
				continue
			}
			if !yield(av.Address, av.Value) {
				return
			}
		}
	}
}

func (s *Set) sortedKeys() []string {
	keys := make([]string, 0, len(s.elems))
	for k := range s.elems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Set) String() string {
	parts := make([]string, 0, len(s.elems))
	for av := range s.All() {
		parts = append(parts, av.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
