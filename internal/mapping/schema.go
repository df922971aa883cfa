package mapping

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"cadnorm/internal/record"
)

// CurrentVersion is written into every marshaled mapping.
const CurrentVersion = "1"

// FieldMapping assigns source columns to canonical field ids.
type FieldMapping struct {
	// Version of the mapping schema.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Dialect names the CAD dialect the mapping was seeded from, if any.
	Dialect string `yaml:"dialect,omitempty" json:"dialect,omitempty"`

	// Entries is keyed by canonical field id.
	Entries map[string]Entry `yaml:"fields" json:"fields"`
}

// Entry is the mapping of one canonical field.
type Entry struct {
	Source    SourceRef        `yaml:"source" json:"source"`
	Rule      *Rule            `yaml:"rule,omitempty" json:"rule,omitempty"`
	Transform *TransformConfig `yaml:"transform,omitempty" json:"transform,omitempty"`
	Origin    Origin           `yaml:"origin,omitempty" json:"origin,omitempty"`
	// Score is the scored-tier total; zero for other origins.
	Score int `yaml:"score,omitempty" json:"score,omitempty"`
}

// IsDirect reports whether the entry reads its source column unmodified.
func (e Entry) IsDirect() bool {
	return e.Rule == nil || e.Rule.Kind == RuleDirect
}

// ReadKey identifies what the entry reads: the source column, plus the
// rule's part for rule entries. Two entries with one ReadKey populate two
// fields from the same data.
func (e Entry) ReadKey() string {
	key := e.Source.Key()
	if rk := e.Rule.Key(); rk != "" {
		key += "|" + rk
	}

	return key
}

// Origin records which layer produced an entry.
type Origin string

const (
	OriginOverride  Origin = "override"
	OriginDialect   Origin = "dialect"
	OriginExact     Origin = "exact"
	OriginAlias     Origin = "alias"
	OriginHeuristic Origin = "heuristic"
	OriginScored    Origin = "scored"
)

// IsValid returns true if the origin is a recognized value.
func (o Origin) IsValid() bool {
	switch o {
	case OriginOverride, OriginDialect, OriginExact, OriginAlias, OriginHeuristic, OriginScored:
		return true
	default:
		return false
	}
}

// New returns an empty mapping.
func New() *FieldMapping {
	return &FieldMapping{Version: CurrentVersion, Entries: map[string]Entry{}}
}

// Len returns the number of mapped targets.
func (m *FieldMapping) Len() int {
	if m == nil {
		return 0
	}

	return len(m.Entries)
}

// Get returns the entry for a canonical field id.
func (m *FieldMapping) Get(target string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}

	e, ok := m.Entries[target]

	return e, ok
}

// Has reports whether target is mapped.
func (m *FieldMapping) Has(target string) bool {
	_, ok := m.Get(target)
	return ok
}

// Set stores an entry, replacing any existing one.
func (m *FieldMapping) Set(target string, e Entry) {
	if m.Entries == nil {
		m.Entries = map[string]Entry{}
	}

	m.Entries[target] = e
}

// Targets returns the mapped field ids in sorted order.
func (m *FieldMapping) Targets() []string {
	if m == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(m.Entries))
}

// Clone returns a copy whose entries can be modified independently.
func (m *FieldMapping) Clone() *FieldMapping {
	if m == nil {
		return New()
	}

	out := &FieldMapping{Version: m.Version, Dialect: m.Dialect, Entries: make(map[string]Entry, len(m.Entries))}

	for k, e := range m.Entries {
		if e.Rule != nil {
			r := *e.Rule
			e.Rule = &r
		}

		if e.Transform != nil {
			t := *e.Transform
			e.Transform = &t
		}

		out.Entries[k] = e
	}

	return out
}

// Overlay copies every entry of other whose target is not yet mapped here.
func (m *FieldMapping) Overlay(other *FieldMapping) {
	if other == nil {
		return
	}

	for _, target := range other.Targets() {
		if !m.Has(target) {
			m.Set(target, other.Entries[target])
		}
	}

	if m.Dialect == "" {
		m.Dialect = other.Dialect
	}
}

// ConsumedColumns returns the source keys read by any entry.
func (m *FieldMapping) ConsumedColumns() map[string]bool {
	used := map[string]bool{}

	if m == nil {
		return used
	}

	for _, e := range m.Entries {
		used[e.Source.Key()] = true
	}

	return used
}

// SourcedColumns returns the column names read by any entry, resolving
// positional refs against columns.
func (m *FieldMapping) SourcedColumns(columns []string) map[string]bool {
	used := map[string]bool{}

	if m == nil {
		return used
	}

	for _, e := range m.Entries {
		if name, ok := e.Source.ColumnIn(columns); ok {
			used[name] = true
		}
	}

	return used
}

// SourceRef names a source column by header or by zero-based position.
type SourceRef struct {
	Column     string
	Index      int
	positional bool
}

// Column returns a header-name reference.
func Column(name string) SourceRef { return SourceRef{Column: name} }

// Position returns a positional reference.
func Position(i int) SourceRef { return SourceRef{Index: i, positional: true} }

// IsPositional reports whether the ref is an index.
func (s SourceRef) IsPositional() bool { return s.positional }

// IsZero reports whether the ref names nothing.
func (s SourceRef) IsZero() bool { return !s.positional && strings.TrimSpace(s.Column) == "" }

// Key identifies the referenced column for fan-out checks. Header names
// compare case-insensitively.
func (s SourceRef) Key() string {
	if s.positional {
		return "#" + strconv.Itoa(s.Index)
	}

	return strings.ToLower(strings.TrimSpace(s.Column))
}

// String returns the column name or "#<index>".
func (s SourceRef) String() string {
	if s.positional {
		return fmt.Sprintf("#%d", s.Index)
	}

	return s.Column
}

// Resolve reads the referenced cell.
func (s SourceRef) Resolve(r record.SourceRecord) (record.Value, bool) {
	if s.positional {
		return r.At(s.Index)
	}

	return r.Get(s.Column)
}

// ColumnIn returns the header the ref points at within columns.
func (s SourceRef) ColumnIn(columns []string) (string, bool) {
	if s.positional {
		if s.Index < 0 || s.Index >= len(columns) {
			return "", false
		}

		return columns[s.Index], true
	}

	for _, c := range columns {
		if c == s.Column {
			return c, true
		}
	}

	for _, c := range columns {
		if strings.EqualFold(c, s.Column) {
			return c, true
		}
	}

	return "", false
}
