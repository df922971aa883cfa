package record

import "strings"

// SourceRecord is one parsed input row: ordered column names and their
// values. It is immutable once built.
type SourceRecord struct {
	columns []string
	values  []Value
	index   map[string]int
}

// NewSourceRecord builds a record from parallel column and value slices.
// Missing trailing values are Null; extra values are dropped. When a column
// name repeats, lookups by name resolve to its first occurrence.
func NewSourceRecord(columns []string, values []Value) SourceRecord {
	cols := make([]string, len(columns))
	copy(cols, columns)

	vals := make([]Value, len(columns))
	copy(vals, values)

	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}

	return SourceRecord{columns: cols, values: vals, index: idx}
}

// FromMap builds a record with the given column order from a name→value map.
func FromMap(columns []string, cells map[string]Value) SourceRecord {
	vals := make([]Value, len(columns))
	for i, c := range columns {
		vals[i] = cells[c]
	}

	return NewSourceRecord(columns, vals)
}

// Columns returns a copy of the column names in order.
func (r SourceRecord) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)

	return out
}

// Len returns the number of columns.
func (r SourceRecord) Len() int { return len(r.columns) }

// Get returns the value of a column. Exact names win; otherwise the first
// case-insensitive match is used.
func (r SourceRecord) Get(column string) (Value, bool) {
	if i, ok := r.index[column]; ok {
		return r.values[i], true
	}

	for i, c := range r.columns {
		if strings.EqualFold(c, column) {
			return r.values[i], true
		}
	}

	return Value{}, false
}

// At returns the value at a positional index.
func (r SourceRecord) At(i int) (Value, bool) {
	if i < 0 || i >= len(r.values) {
		return Value{}, false
	}

	return r.values[i], true
}
