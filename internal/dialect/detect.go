package dialect

import (
	"cadnorm/internal/mapping"
)

// Detect returns the first dialect, in priority order, whose fingerprint
// columns are all present. Column names compare case-insensitively.
func (c *Catalog) Detect(columns []string) (*Dialect, bool) {
	if c == nil {
		return nil, false
	}

	set := columnSet(columns)

	for i := range c.dialects {
		if c.dialects[i].matches(set) {
			d := c.dialects[i]
			return &d, true
		}
	}

	return nil, false
}

// Candidate is a dialect with the share of its fingerprint present.
type Candidate struct {
	Name     string   `json:"name"`
	Coverage float64  `json:"coverage"`
	Missing  []string `json:"missing,omitempty"`
}

// Rank reports fingerprint coverage for every dialect, in priority order.
// It never changes what Detect returns.
func (c *Catalog) Rank(columns []string) []Candidate {
	set := columnSet(columns)
	out := make([]Candidate, 0, len(c.dialects))

	for _, d := range c.dialects {
		var missing []string

		for _, col := range d.Fingerprint {
			if !set[fold(col)] {
				missing = append(missing, col)
			}
		}

		out = append(out, Candidate{
			Name:     d.Name,
			Coverage: float64(len(d.Fingerprint)-len(missing)) / float64(len(d.Fingerprint)),
			Missing:  missing,
		})
	}

	return out
}

func (d *Dialect) matches(set map[string]bool) bool {
	for _, col := range d.Fingerprint {
		if !set[fold(col)] {
			return false
		}
	}

	return true
}

// PreMap builds mapping entries for every rule whose column is present.
// Each entry carries the target's default transform, with the rule's
// format as source format when set.
func (d *Dialect) PreMap(columns []string) *mapping.FieldMapping {
	fm := mapping.New()
	fm.Dialect = d.Name

	for id, r := range d.Rules {
		col, ok := mapping.Column(r.Column).ColumnIn(columns)
		if !ok {
			continue
		}

		tc := mapping.DefaultTransform(d.types[id])
		if r.Format != "" {
			tc.SourceFormat = r.Format
		}

		e := mapping.Entry{
			Source:    mapping.Column(col),
			Transform: tc,
			Origin:    mapping.OriginDialect,
		}

		if r.Kind != "" && r.Kind != mapping.RuleDirect {
			rule := r.Rule
			e.Rule = &rule
		}

		fm.Set(id, e)
	}

	return fm
}
