package domain

import "strconv"

// Record is a single entry of a collection: a JSON object keyed by field
// name. Collections travel through the storage layer as whole JSON arrays,
// so records stay schemaless here and callers coerce the fields they need.
type Record map[string]any

// ID returns the record's id field coerced to a string.
func (r Record) ID() string {
	return r.String("id")
}

// Has reports whether the field is present, regardless of its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String coerces the field to a string. Numeric values are formatted the way
// JSON renders them (no trailing zeros), everything else missing or
// non-scalar yields "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Int coerces the field to an integer. JSON numbers arrive as float64 after
// decoding; numeric strings (imported data) are parsed. Anything else is 0.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// Float coerces the field to a float64, accepting numeric strings.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge shallow-merges the supplied fields into the record, overwriting
// existing values.
func (r Record) Merge(fields Record) {
	for k, v := range fields {
		r[k] = v
	}
}
