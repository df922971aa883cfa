package registry

import (
	"fmt"
	"sort"

	"cadnorm/internal/match"
)

// Registry is an immutable lookup over canonical fields and tool profiles.
type Registry struct {
	fields   []CanonicalField
	byID     map[string]int
	byName   map[string]int
	profiles map[string]*ToolProfile
}

// New validates fields and profiles and builds a Registry.
//
// It fails when an id repeats, when a name or alias of one field normalizes
// to the same key as a name or alias of another, or when a profile
// references an unknown field.
func New(fields []CanonicalField, profiles []ToolProfile) (*Registry, error) {
	r := &Registry{
		fields:   make([]CanonicalField, len(fields)),
		byID:     make(map[string]int, len(fields)),
		byName:   make(map[string]int, len(fields)*4),
		profiles: make(map[string]*ToolProfile, len(profiles)),
	}
	copy(r.fields, fields)

	for i := range r.fields {
		f := &r.fields[i]

		if f.ID == "" {
			return nil, fmt.Errorf("field at index %d has empty id", i)
		}

		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate field id %q", f.ID)
		}

		if !f.Type.IsValid() {
			return nil, fmt.Errorf("field %q: invalid semantic type %q", f.ID, f.Type)
		}

		if !f.Category.IsValid() {
			return nil, fmt.Errorf("field %q: invalid category %q", f.ID, f.Category)
		}

		r.byID[f.ID] = i
	}

	for i := range r.fields {
		f := &r.fields[i]

		for _, name := range f.Names() {
			key := match.NormalizeIdent(name)
			if key == "" {
				return nil, fmt.Errorf("field %q: name %q normalizes to empty", f.ID, name)
			}

			if owner, taken := r.byName[key]; taken && owner != i {
				return nil, fmt.Errorf("field %q: name %q collides with field %q",
					f.ID, name, r.fields[owner].ID)
			}

			r.byName[key] = i
		}
	}

	for i := range profiles {
		p := profiles[i]

		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate tool profile %q", p.ID)
		}

		for _, id := range p.Targets() {
			if _, ok := r.byID[id]; !ok {
				return nil, fmt.Errorf("tool profile %q references unknown field %q", p.ID, id)
			}
		}

		r.profiles[p.ID] = &p
	}

	return r, nil
}

// MustNew is New that panics on error. Use only for shipped tables.
func MustNew(fields []CanonicalField, profiles []ToolProfile) *Registry {
	r, err := New(fields, profiles)
	if err != nil {
		panic(err)
	}

	return r
}

// LookupByName resolves an id, display name or alias. Matching ignores
// case and separators.
func (r *Registry) LookupByName(name string) (*CanonicalField, bool) {
	i, ok := r.byName[match.NormalizeIdent(name)]
	if !ok {
		return nil, false
	}

	return &r.fields[i], true
}

// Field returns the field with the given id.
func (r *Registry) Field(id string) (*CanonicalField, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}

	return &r.fields[i], true
}

// Fields returns all fields in table order.
func (r *Registry) Fields() []CanonicalField {
	out := make([]CanonicalField, len(r.fields))
	copy(out, r.fields)

	return out
}

// IDs returns all field ids in table order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.fields))
	for i := range r.fields {
		out[i] = r.fields[i].ID
	}

	return out
}

// FieldsByCategory returns the fields of one category in table order.
func (r *Registry) FieldsByCategory(c Category) []CanonicalField {
	var out []CanonicalField

	for i := range r.fields {
		if r.fields[i].Category == c {
			out = append(out, r.fields[i])
		}
	}

	return out
}

// Profile returns the tool profile with the given id.
func (r *Registry) Profile(id string) (*ToolProfile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Profiles returns all tool profiles sorted by id.
func (r *Registry) Profiles() []ToolProfile {
	out := make([]ToolProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
