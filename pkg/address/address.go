// Package address flattens nested data structures into addressed leaf values
// and provides set algebra over the resulting (address, value) pairs.
package address

import (
	"strconv"
	"strings"
)

// Component is one step in an Address: either an object key or an array index.
type Component struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key builds an object-key component.
func Key(k string) Component {
	return Component{Key: k}
}

// Index builds an array-index component.
func Index(i int) Component {
	return Component{Index: i, IsIndex: true}
}

func (c Component) String() string {
	if c.IsIndex {
		return "[" + strconv.Itoa(c.Index) + "]"
	}
	if needsQuote(c.Key) {
		return strconv.Quote(c.Key)
	}
	return c.Key
}

// needsQuote reports whether a key must be quoted to keep the rendered
// address unambiguous.
func needsQuote(key string) bool {
	return key == "" || strings.ContainsAny(key, ".[]\" \t\n")
}

// Address locates a leaf value from the root of a tree. Addresses are
// value-semantics: Child and At return extended copies and never alias the
// receiver's backing array.
type Address []Component

// Child returns a copy of a extended with an object-key component.
func (a Address) Child(key string) Address {
	return a.extend(Key(key))
}

// At returns a copy of a extended with an array-index component.
func (a Address) At(i int) Address {
	return a.extend(Index(i))
}

func (a Address) extend(c Component) Address {
	out := make(Address, len(a)+1)
	copy(out, a)
	out[len(a)] = c
	return out
}

// Contains reports whether c occurs anywhere in the address. Matching is
// exact on component kind: the key "1" never matches the index 1.
func (a Address) Contains(c Component) bool {
	for _, have := range a {
		if have == c {
			return true
		}
	}
	return false
}

// Equal reports component-wise equality.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String renders the address in kinded-path style: keys joined with dots,
// indices in brackets, e.g. "history.observations[3].dewptm".
func (a Address) String() string {
	var b strings.Builder
	for i, c := range a {
		if i > 0 && !c.IsIndex {
			b.WriteByte('.')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// key is the canonical encoding used for set membership. The rendered String
// form is ambiguous between exotic keys and indices; this one is not.
func (a Address) key() string {
	var b strings.Builder
	for _, c := range a {
		if c.IsIndex {
			b.WriteByte('i')
			b.WriteString(strconv.Itoa(c.Index))
		} else {
			b.WriteByte('k')
			b.WriteString(strconv.Quote(c.Key))
		}
		b.WriteByte(0x1e)
	}
	return b.String()
}
