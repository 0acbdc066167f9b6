// Package parser turns JSON and YAML documents into the in-memory trees the
// core packages address and compare. Parse errors belong here; the core never
// raises them.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names a supported input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a Format from a file suffix.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cannot determine input format from %q (want .json, .yaml or .yml)", path)
	}
}

// Parse decodes a document into a tree of maps, slices and scalars. JSON
// numbers are decoded with full precision and normalized so that integers
// stay integers rather than collapsing to floating values.
func Parse(data []byte, format Format) (interface{}, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("unmarshaling JSON: %w", err)
		}
		return normalizeNumbers(v), nil
	case FormatYAML:
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("unmarshaling YAML: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ParseFile reads and decodes a document, picking the format from the file
// suffix.
func ParseFile(path string) (interface{}, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	v, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return v, nil
}

// normalizeNumbers rewrites json.Number leaves to int64 or float64 by
// lexical content.
func normalizeNumbers(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := val.Int64(); err == nil {
				return i
			}
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return s
	case map[string]interface{}:
		for k, child := range val {
			val[k] = normalizeNumbers(child)
		}
		return val
	case []interface{}:
		for i, child := range val {
			val[i] = normalizeNumbers(child)
		}
		return val
	default:
		return v
	}
}
