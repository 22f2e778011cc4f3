package portal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Field is a single column of a Row.
type Field struct {
	Key   string
	Value any
}

// Row is a record whose schema is owned by the backend. It keeps the columns
// in the order the server sent them, which drives header order in tables and
// iteration order in breakdowns.
//
// Numbers are held as json.Number, nested values as decoded by encoding/json.
type Row struct {
	fields []Field
}

// NewRow builds a row from alternating key, value pairs.
func NewRow(kv ...any) Row {
	var r Row
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Set replaces the value of key, or appends it.
func (r *Row) Set(key string, value any) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{key, value})
}

func (r Row) Len() int        { return len(r.fields) }
func (r Row) Fields() []Field { return r.fields }
func (r Row) IsEmpty() bool   { return len(r.fields) == 0 }
func (r Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the column names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the raw value of key.
func (r Row) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value of key as text. Missing and null values are "".
func (r Row) String(key string) string {
	v, _ := r.Get(key)
	return textOf(v)
}

// Float returns the numeric value of key.
func (r Row) Float(key string) (float64, bool) {
	v, _ := r.Get(key)
	return floatOf(v)
}

// Int returns the numeric value of key truncated to an int.
func (r Row) Int(key string) int {
	f, _ := r.Float(key)
	return int(f)
}

// Percent returns the value of key as a Percent.
func (r Row) Percent(key string) Percent {
	f, _ := r.Float(key)
	return Percent(f)
}

// Money returns the value of key as an exact USD amount.
func (r Row) Money(key string) Money {
	v, _ := r.Get(key)
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return USD(d)
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return USD(d)
		}
	case float64:
		return USD(t)
	case int:
		return USD(t)
	}
	return USD(0)
}

// Map returns the row as a plain map, numbers converted to float64.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Key] = plain(f.Value)
	}
	return m
}

// Path evaluates a JSONPath expression against the row, e.g. "$.current_allocation.equities".
func (r Row) Path(expr string) (any, error) {
	v, err := jsonpath.Get(expr, r.Map())
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %q: %w", expr, err)
	}
	return v, nil
}

// Contains reports whether any value of the row contains term, ignoring case.
// term must already be lower case. Empty values, null, false and zero never
// match.
func (r Row) Contains(term string) bool {
	for _, f := range r.fields {
		if isBlank(f.Value) {
			continue
		}
		if strings.Contains(strings.ToLower(textOf(f.Value)), term) {
			return true
		}
	}
	return false
}

func (r *Row) UnmarshalJSON(data []byte) error {
	r.fields = nil
	return jsonObjectReader(data, func(key string, dec *json.Decoder) error {
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.fields = append(r.fields, Field{key, v})
		return nil
	})
}

func (r Row) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, f := range r.fields {
		w.Append(f.Key, f.Value)
	}
	return w.MarshalJSON()
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	f, ok := floatOf(v)
	return ok && f == 0
}

// textOf is the plain string form of a decoded JSON value.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case map[string]any, []any, Row:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

// plain converts json.Number recursively so that jsonpath can compare values.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plain(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = plain(e)
		}
		return l
	}
	return v
}
