// Package tree classifies parsed nested-data values (the output of a JSON or
// YAML parser) into the semantic kinds the rest of the toolchest operates on.
package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the semantic type of a parsed tree value.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindNull    Kind = "null"
	// KindInvalid marks values that cannot appear in a parsed tree.
	KindInvalid Kind = "invalid"
)

// KindOf maps a parsed value to its semantic kind. It accepts the shapes
// produced by encoding/json, goccy/go-json and yaml.v3: all integer widths
// collapse to KindInteger, floats to KindNumber, and a json.Number is
// classified by its lexical content.
func KindOf(v interface{}) Kind {
	switch val := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBoolean
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInteger
	case float32, float64:
		return KindNumber
	case json.Number:
		if strings.ContainsAny(val.String(), ".eE") {
			return KindNumber
		}
		return KindInteger
	case map[string]interface{}, map[interface{}]interface{}:
		return KindObject
	case []interface{}:
		return KindArray
	default:
		return KindInvalid
	}
}

// IsContainer reports whether k is an object or array kind.
func IsContainer(k Kind) bool {
	return k == KindObject || k == KindArray
}

// Validate walks a candidate tree and returns an error naming the first value
// that is not part of the tree domain. A nil error means every node is a
// container or scalar the toolchest knows how to address and compare.
func Validate(v interface{}) error {
	return validate(v, "$")
}

func validate(v interface{}, at string) error {
	switch KindOf(v) {
	case KindObject:
		for key, child := range Fields(v) {
			if err := validate(child, at+"."+key); err != nil {
				return err
			}
		}
		return nil
	case KindArray:
		for i, child := range v.([]interface{}) {
			if err := validate(child, fmt.Sprintf("%s[%d]", at, i)); err != nil {
				return err
			}
		}
		return nil
	case KindInvalid:
		return fmt.Errorf("unsupported value of type %T at %s", v, at)
	default:
		return nil
	}
}

// Float attempts the numeric coercion the comparison rules are defined over:
// strings, integers and numbers may all carry a numeric value. It reports
// false for booleans, nulls and containers, and for strings that do not parse
// as a floating number.
func Float(v interface{}) (float64, bool) {
	switch KindOf(v) {
	case KindInteger:
		return float64(AsInt(v)), true
	case KindNumber:
		switch n := v.(type) {
		case float32:
			return float64(n), true
		case float64:
			return n, true
		case json.Number:
			f, err := n.Float64()
			return f, err == nil
		}
		return 0, false
	case KindString:
		f, err := strconv.ParseFloat(v.(string), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsInt collapses any integer-kinded value to int64.
func AsInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	}
	return 0
}

// Fields normalizes an object node to a string-keyed map. YAML parsers may
// produce interface{}-keyed maps; non-string keys are rendered with %v.
func Fields(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out
	default:
		return nil
	}
}
