package plan

import (
	"fmt"

	"cadnorm/internal/common"
	"cadnorm/internal/infer"
	"cadnorm/internal/mapping"
	"cadnorm/internal/match"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

// Resolver maps source columns onto canonical targets. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	reg    *registry.Registry
	infer  *infer.Inferencer
	config ResolutionConfig
}

// NewResolver creates a new Resolver.
func NewResolver(reg *registry.Registry, config ResolutionConfig) *Resolver {
	if config.MinScore <= 0 {
		config.MinScore = DefaultMinScore
	}

	if config.SampleRows <= 0 {
		config.SampleRows = DefaultConfig().SampleRows
	}

	return &Resolver{reg: reg, infer: infer.New(reg), config: config}
}

// Config returns the resolver's configuration.
func (r *Resolver) Config() ResolutionConfig { return r.config }

// resolution is the mutable state of one Resolve call.
type resolution struct {
	columns []string
	samples []record.Value
	used    []bool
	pending []*registry.CanonicalField
	result  *Result
}

// Resolve maps columns onto targets. seed entries are kept verbatim and
// the columns they read are excluded for every other target. samples are
// optional; without them the scored tier is skipped. The same inputs
// always produce the same mapping.
func (r *Resolver) Resolve(
	columns []string,
	targets []string,
	samples []record.SourceRecord,
	seed *mapping.FieldMapping,
) *Result {
	st := &resolution{
		columns: columns,
		samples: r.columnSamples(columns, samples),
		used:    make([]bool, len(columns)),
		result:  &Result{Mapping: seed.Clone()},
	}

	consumed := st.result.Mapping.SourcedColumns(columns)
	for i, c := range columns {
		if consumed[c] {
			st.used[i] = true
		}
	}

	for _, id := range common.Dedupe(targets) {
		if st.result.Mapping.Has(id) {
			continue
		}

		f, ok := r.reg.Field(id)
		if !ok {
			st.result.Diagnostics.AddWarning("unknown_target",
				fmt.Sprintf("target %q is not a canonical field", id), "", id)

			continue
		}

		st.pending = append(st.pending, f)
	}

	r.matchExact(st)
	r.matchAlias(st)
	r.matchCoordinates(st)

	reasons := map[string]string{}
	if len(samples) > 0 {
		reasons = r.matchScored(st)
	}

	r.reportUnmapped(st, reasons, len(samples) > 0)

	return st.result
}

// columnSamples returns the first non-blank value of every column among
// the first SampleRows records.
func (r *Resolver) columnSamples(columns []string, rows []record.SourceRecord) []record.Value {
	out := make([]record.Value, len(columns))

	limit := min(len(rows), r.config.SampleRows)

	for i, col := range columns {
		for _, row := range rows[:limit] {
			v, ok := row.Get(col)
			if ok && !v.IsBlank() {
				out[i] = v
				break
			}
		}
	}

	return out
}

// assign records a mapping for the pending target at index pi.
func (st *resolution) assign(pi, col int, origin mapping.Origin, score int) {
	f := st.pending[pi]

	st.result.Mapping.Set(f.ID, mapping.Entry{
		Source:    mapping.Column(st.columns[col]),
		Transform: mapping.DefaultTransform(f.Type),
		Origin:    origin,
		Score:     score,
	})
	st.used[col] = true

	msg := fmt.Sprintf("%s: %q -> %s", origin, st.columns[col], f.ID)
	if origin == mapping.OriginScored {
		msg = fmt.Sprintf("%s (score %d)", msg, score)
	}

	st.result.Diagnostics.AddInfo("mapped_field", msg, string(origin), f.ID)
}

// compact drops targets mapped by the last tier.
func (st *resolution) compact() {
	kept := st.pending[:0]

	for _, f := range st.pending {
		if !st.result.Mapping.Has(f.ID) {
			kept = append(kept, f)
		}
	}

	st.pending = kept
}

// available returns the indices of unconsumed columns, leftmost first.
func (st *resolution) available() []int {
	var out []int

	for i := range st.columns {
		if !st.used[i] {
			out = append(out, i)
		}
	}

	return out
}

func (r *Resolver) reportUnmapped(st *resolution, reasons map[string]string, hadSamples bool) {
	var free []string
	for _, i := range st.available() {
		free = append(free, st.columns[i])
	}

	for _, f := range st.pending {
		reason, ok := reasons[f.ID]

		switch {
		case ok:
		case len(free) == 0:
			reason = "no unconsumed source columns left"
		case !hadSamples:
			reason = "no name or alias match, and no sample rows for scoring"
		default:
			reason = "no name or alias match"
		}

		sugg := match.Suggest(f.Names(), free, r.config.SuggestionMinScore, r.config.MaxSuggestions)

		st.result.Unmapped = append(st.result.Unmapped, UnmappedField{
			Target:      f.ID,
			Reason:      reason,
			Suggestions: sugg,
		})

		st.result.Diagnostics.AddSuggestedWarning("unmapped_field",
			fmt.Sprintf("target field %q: %s", f.ID, reason), f.ID, sugg.Columns())
	}
}
