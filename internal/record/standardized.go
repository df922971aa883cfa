package record

import "maps"

// StandardizedRecord is the normalized form of one SourceRecord. Fields is
// keyed by canonical field id. Extra carries unmapped source columns as-is,
// keyed by their original column name.
type StandardizedRecord struct {
	Fields map[string]Value `json:"fields"`
	Extra  map[string]Value `json:"extra,omitempty"`
}

// NewStandardized returns an empty record.
func NewStandardized() StandardizedRecord {
	return StandardizedRecord{Fields: map[string]Value{}}
}

// Get returns a canonical field value.
func (r StandardizedRecord) Get(id string) (Value, bool) {
	v, ok := r.Fields[id]
	return v, ok
}

// Has reports whether id is present with a non-blank value.
func (r StandardizedRecord) Has(id string) bool {
	v, ok := r.Fields[id]
	return ok && !v.IsBlank()
}

// Set stores a canonical field value. Blank values are not stored.
func (r StandardizedRecord) Set(id string, v Value) {
	if v.IsBlank() {
		return
	}

	r.Fields[id] = v
}

// Clone returns a deep copy.
func (r StandardizedRecord) Clone() StandardizedRecord {
	out := StandardizedRecord{Fields: maps.Clone(r.Fields)}
	if out.Fields == nil {
		out.Fields = map[string]Value{}
	}

	if r.Extra != nil {
		out.Extra = maps.Clone(r.Extra)
	}

	return out
}
