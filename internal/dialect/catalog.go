package dialect

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"cadnorm/internal/chrono"
	"cadnorm/internal/mapping"
	"cadnorm/internal/registry"
)

//go:embed dialects.yaml
var shipped []byte

// Rule extracts one canonical field from one source column.
type Rule struct {
	Column       string `yaml:"column"`
	mapping.Rule `yaml:",inline"`
	// Format overrides the target field's source format.
	Format string `yaml:"format,omitempty"`
}

// Dialect is a named vendor export schema.
type Dialect struct {
	Name        string          `yaml:"name"`
	Vendor      string          `yaml:"vendor"`
	Description string          `yaml:"description,omitempty"`
	Fingerprint []string        `yaml:"fingerprint"`
	Rules       map[string]Rule `yaml:"rules"`

	types map[string]registry.SemanticType
}

type catalogFile struct {
	Dialects []Dialect `yaml:"dialects"`
}

// Catalog is an ordered, immutable list of dialects.
type Catalog struct {
	dialects []Dialect
	byName   map[string]int
}

// Default loads the shipped catalog.
func Default(reg *registry.Registry) (*Catalog, error) {
	return Load(shipped, reg)
}

// MustDefault is Default that panics on error.
func MustDefault(reg *registry.Registry) *Catalog {
	c, err := Default(reg)
	if err != nil {
		panic(err)
	}

	return c
}

// Load parses a catalog and validates it against the registry. Unknown
// YAML keys are rejected.
func Load(data []byte, reg *registry.Registry) (*Catalog, error) {
	if reg == nil {
		return nil, errors.New("dialect catalog needs a registry")
	}

	var file catalogFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse dialect catalog: %w", err)
	}

	return New(file.Dialects, reg)
}

// New validates dialects in priority order and builds a catalog.
func New(dialects []Dialect, reg *registry.Registry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(dialects))}

	var errs []error

	for i := range dialects {
		d := dialects[i]

		if err := d.bind(reg); err != nil {
			errs = append(errs, err)
			continue
		}

		if _, dup := c.byName[d.Name]; dup {
			errs = append(errs, fmt.Errorf("dialect %q: duplicate name", d.Name))
			continue
		}

		for _, earlier := range c.dialects {
			if covers(d.Fingerprint, earlier.Fingerprint) {
				errs = append(errs, fmt.Errorf("dialect %q: fingerprint is shadowed by %q", d.Name, earlier.Name))
			}
		}

		c.byName[d.Name] = len(c.dialects)
		c.dialects = append(c.dialects, d)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return c, nil
}

// bind checks rules against the registry and records target types.
func (d *Dialect) bind(reg *registry.Registry) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("dialect with empty name")
	}

	if len(d.Fingerprint) == 0 {
		return fmt.Errorf("dialect %q: empty fingerprint", d.Name)
	}

	d.types = make(map[string]registry.SemanticType, len(d.Rules))

	var errs []error

	for id, r := range d.Rules {
		f, ok := reg.Field(id)
		if !ok {
			errs = append(errs, fmt.Errorf("dialect %q: unknown field %q", d.Name, id))
			continue
		}

		if strings.TrimSpace(r.Column) == "" {
			errs = append(errs, fmt.Errorf("dialect %q: rule for %q has no column", d.Name, id))
		}

		if err := r.Rule.Check(); err != nil {
			errs = append(errs, fmt.Errorf("dialect %q: rule for %q: %w", d.Name, id, err))
		}

		if r.Format != "" {
			if _, err := chrono.Compile(r.Format); err != nil {
				errs = append(errs, fmt.Errorf("dialect %q: rule for %q: %w", d.Name, id, err))
			}
		}

		d.types[id] = f.Type
	}

	readers := make(map[string]string, len(d.Rules))

	for _, id := range slices.Sorted(maps.Keys(d.Rules)) {
		r := d.Rules[id]

		key := fold(r.Column) + "|" + r.Rule.Key()
		if prev, dup := readers[key]; dup {
			errs = append(errs, fmt.Errorf("dialect %q: %q and %q read the same part of column %q",
				d.Name, prev, id, r.Column))

			continue
		}

		readers[key] = id
	}

	return errors.Join(errs...)
}

// covers reports whether every column of earlier appears in later, which
// means later can never be detected.
func covers(later, earlier []string) bool {
	set := columnSet(later)

	for _, c := range earlier {
		if !set[fold(c)] {
			return false
		}
	}

	return true
}

// Dialects returns the catalog in priority order.
func (c *Catalog) Dialects() []Dialect {
	out := make([]Dialect, len(c.dialects))
	copy(out, c.dialects)

	return out
}

// Get returns a dialect by name.
func (c *Catalog) Get(name string) (*Dialect, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}

	d := c.dialects[i]

	return &d, true
}

// Names returns dialect names in priority order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.dialects))
	for i, d := range c.dialects {
		out[i] = d.Name
	}

	return out
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func columnSet(columns []string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[fold(c)] = true
	}

	return set
}
