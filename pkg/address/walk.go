package address

import (
	"fmt"
	"iter"
	"sort"
	"strconv"

	"github.com/LClos/data-toolchest/pkg/tree"
)

// AddressedValue pairs a leaf value with the address that locates it.
// Two pairs are equal only when both the address and the value, including
// the value's semantic kind, match.
type AddressedValue struct {
	Address Address
	Value   interface{}
}

// Equal reports whether two addressed values match by address, value and
// value kind.
func (av AddressedValue) Equal(other AddressedValue) bool {
	return av.Address.Equal(other.Address) && valueKey(av.Value) == valueKey(other.Value)
}

func (av AddressedValue) String() string {
	return fmt.Sprintf("(%s, %v)", av.Address, av.Value)
}

// key is the canonical set-membership encoding of the pair.
func (av AddressedValue) key() string {
	return av.Address.key() + "\x1f" + valueKey(av.Value)
}

// valueKey encodes a scalar with its kind so that values of different kinds
// never compare equal: the integer 3 is distinct from the string "3", true
// from 1, null from false.
func valueKey(v interface{}) string {
	kind := tree.KindOf(v)
	switch kind {
	case tree.KindNull:
		return "null"
	case tree.KindBoolean:
		return "bool:" + strconv.FormatBool(v.(bool))
	case tree.KindString:
		return "string:" + v.(string)
	case tree.KindInteger:
		return "int:" + strconv.FormatInt(tree.AsInt(v), 10)
	case tree.KindNumber:
		f, _ := tree.Float(v)
		return "num:" + strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return string(kind) + ":" + fmt.Sprintf("%v", v)
	}
}

// Walk produces the addressed leaf values of a parsed tree as a lazy,
// restartable sequence. Object keys are visited in sorted order and array
// elements by position; empty containers contribute nothing. A scalar root
// yields a single pair with an empty address.
//
// Walk assumes a valid tree; callers that accept arbitrary input should gate
// it through tree.Validate first. Values outside the tree domain are skipped.
func Walk(root interface{}) iter.Seq[AddressedValue] {
	return func(yield func(AddressedValue) bool) {
		walk(Address{}, root, yield)
	}
}

func walk(at Address, v interface{}, yield func(AddressedValue) bool) bool {
	switch tree.KindOf(v) {
	case tree.KindObject:
		fields := tree.Fields(v)
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !walk(at.Child(k), fields[k], yield) {
				return false
			}
		}
		return true
	case tree.KindArray:
		for i, el := range v.([]interface{}) {
			if !walk(at.At(i), el, yield) {
				return false
			}
		}
		return true
	case tree.KindInvalid:
		return true
	default:
		return yield(AddressedValue{Address: at, Value: v})
	}
}
