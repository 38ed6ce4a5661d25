package agent

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Document is a decoded JSON object of unknown shape.
type Document map[string]any

// Has reports whether key is present with a non-null value.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// String returns the value at key as a string. Numbers and booleans are
// formatted; missing, null, empty or structured values yield def.
func (d Document) String(key, def string) string {
	switch v := d[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

// First returns the first of keys that holds a usable string, or def.
func (d Document) First(def string, keys ...string) string {
	for _, key := range keys {
		if s := d.String(key, ""); s != "" {
			return s
		}
	}
	return def
}

// Float returns the value at key as a float64. Numeric strings are parsed.
func (d Document) Float(key string, def float64) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the value at key as an int, truncating fractional numbers.
// Numbers outside the int range yield def.
func (d Document) Int(key string, def int) int {
	f := d.Float(key, math.NaN())
	if math.IsNaN(f) || f < math.MinInt || f >= math.MaxInt {
		return def
	}
	return int(f)
}

// Bool returns the value at key as a bool. The strings "true"/"false",
// "yes"/"no" and the numbers 1/0 are accepted.
func (d Document) Bool(key string, def bool) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	case float64:
		if v == 1 {
			return true
		}
		if v == 0 {
			return false
		}
	}
	return def
}

// Strings returns the value at key as a string list. Arrays keep their
// string and number elements; a single string becomes its non-blank lines.
func (d Document) Strings(key string) []string {
	var out []string
	switch v := d[key].(type) {
	case []any:
		for _, item := range v {
			if s := (Document{"v": item}).String("v", ""); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// Documents returns the objects held in the array at key. Non-object
// elements are skipped; a single object becomes a one-element list.
func (d Document) Documents(key string) []Document {
	var out []Document
	switch v := d[key].(type) {
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Document(m))
			}
		}
	case map[string]any:
		out = append(out, Document(v))
	}
	return out
}

// Object returns the nested object at key, or an empty Document.
func (d Document) Object(key string) Document {
	if m, ok := d[key].(map[string]any); ok {
		return Document(m)
	}
	return Document{}
}
