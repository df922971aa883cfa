package validate

import (
	"fmt"
	"slices"

	"cadnorm/internal/chrono"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

// Report is the outcome of validating one record.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Gate validates records. The registry supplies field types and patterns;
// it may be nil, in which case pattern checks are skipped.
type Gate struct {
	reg *registry.Registry
}

// New returns a Gate over reg.
func New(reg *registry.Registry) *Gate {
	return &Gate{reg: reg}
}

// MissingRequired formats the error for an absent required field.
func MissingRequired(id string) string {
	return "Missing required field: " + id
}

// Validate checks rec against profile.
func (g *Gate) Validate(rec record.StandardizedRecord, profile *registry.ToolProfile) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	for _, id := range profile.RequiredFields {
		if !rec.Has(id) {
			r.Errors = append(r.Errors, MissingRequired(id))
		}
	}

	checked := map[string]bool{}

	for _, id := range profile.CoordinateFields {
		checked[id] = true

		if w, bad := checkCoordinate(rec, id); bad {
			r.Warnings = append(r.Warnings, w)
		}
	}

	for _, id := range profile.DateFields {
		checked[id] = true

		if v, ok := present(rec, id); ok && !chrono.IsISODate(v.String()) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Date field %s is not in YYYY-MM-DD form: %q", id, v.String()))
		}
	}

	for _, id := range profile.TimeFields {
		checked[id] = true

		if v, ok := present(rec, id); ok && !chrono.IsISOTime(v.String()) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Time field %s is not in HH:MM:SS form: %q", id, v.String()))
		}
	}

	r.Warnings = append(r.Warnings, g.patternWarnings(rec, profile, checked)...)
	r.Valid = len(r.Errors) == 0

	return r
}

func (g *Gate) patternWarnings(rec record.StandardizedRecord, profile *registry.ToolProfile, skip map[string]bool) []string {
	if g.reg == nil {
		return nil
	}

	var out []string

	for _, id := range profile.Targets() {
		if skip[id] {
			continue
		}

		f, ok := g.reg.Field(id)
		if !ok || f.Pattern == nil {
			continue
		}

		v, ok := present(rec, id)
		if !ok || f.Pattern.MatchString(v.String()) {
			continue
		}

		out = append(out, fmt.Sprintf("Field %s does not match the expected form %s: %q", id, f.Example, v.String()))
	}

	return out
}

func present(rec record.StandardizedRecord, id string) (record.Value, bool) {
	if !rec.Has(id) {
		return record.Value{}, false
	}

	return rec.Fields[id], true
}

// coordinateRange is the inclusive bound for each coordinate field.
var coordinateRange = map[string]float64{
	"latitude":  90,
	"longitude": 180,
}

func checkCoordinate(rec record.StandardizedRecord, id string) (string, bool) {
	v, ok := present(rec, id)
	if !ok {
		return "", false
	}

	f, ok := v.Float()
	if !ok {
		return fmt.Sprintf("Coordinate field %s is not numeric: %q", id, v.String()), true
	}

	if limit, ok := coordinateRange[id]; ok && (f < -limit || f > limit) {
		return fmt.Sprintf("Coordinate field %s is out of range: %v", id, f), true
	}

	return "", false
}

// Issue is one distinct message across a batch.
type Issue struct {
	Message  string `json:"message"`
	Rows     int    `json:"rows"`
	FirstRow int    `json:"firstRow"`
}

// BatchReport aggregates per-record reports. Identical messages are
// merged and counted.
type BatchReport struct {
	Valid        bool    `json:"valid"`
	Records      int     `json:"records"`
	ValidRecords int     `json:"validRecords"`
	Errors       []Issue `json:"errors"`
	Warnings     []Issue `json:"warnings"`
}

// ValidateBatch validates every record and merges the results.
func (g *Gate) ValidateBatch(recs []record.StandardizedRecord, profile *registry.ToolProfile) BatchReport {
	b := BatchReport{Records: len(recs), Errors: []Issue{}, Warnings: []Issue{}}

	errIdx := map[string]int{}
	warnIdx := map[string]int{}

	for i, rec := range recs {
		r := g.Validate(rec, profile)
		if r.Valid {
			b.ValidRecords++
		}

		b.Errors = tally(b.Errors, errIdx, r.Errors, i)
		b.Warnings = tally(b.Warnings, warnIdx, r.Warnings, i)
	}

	b.Valid = len(b.Errors) == 0

	return b
}

func tally(issues []Issue, idx map[string]int, messages []string, row int) []Issue {
	for _, m := range slices.Compact(slices.Clone(messages)) {
		if i, ok := idx[m]; ok {
			issues[i].Rows++
			continue
		}

		idx[m] = len(issues)
		issues = append(issues, Issue{Message: m, Rows: 1, FirstRow: row})
	}

	return issues
}

// Summary renders the batch issues as lines, errors first, each prefixed
// with the number of affected rows.
func (b BatchReport) Summary() []string {
	out := make([]string, 0, len(b.Errors)+len(b.Warnings))

	for _, is := range b.Errors {
		out = append(out, fmt.Sprintf("error (%s): %s", rows(is.Rows), is.Message))
	}

	for _, is := range b.Warnings {
		out = append(out, fmt.Sprintf("warning (%s): %s", rows(is.Rows), is.Message))
	}

	return out
}

func rows(n int) string {
	if n == 1 {
		return "1 row"
	}

	return fmt.Sprintf("%d rows", n)
}
