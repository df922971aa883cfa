package plan

import (
	"fmt"
	"strings"

	"cadnorm/internal/mapping"
	"cadnorm/internal/match"
	"cadnorm/internal/registry"
)

// matchExact maps targets whose id or display name equals a column after
// normalization.
func (r *Resolver) matchExact(st *resolution) {
	for pi, f := range st.pending {
		keys := []string{match.NormalizeIdent(f.ID), match.NormalizeIdent(f.DisplayName)}
		if col, ok := st.firstColumn(keys); ok {
			st.assign(pi, col, mapping.OriginExact, 0)
		}
	}

	st.compact()
}

// matchAlias maps targets one of whose aliases equals a column.
func (r *Resolver) matchAlias(st *resolution) {
	for pi, f := range st.pending {
		keys := make([]string, 0, len(f.Aliases))
		for _, a := range f.Aliases {
			keys = append(keys, match.NormalizeIdent(a))
		}

		if col, ok := st.firstColumn(keys); ok {
			st.assign(pi, col, mapping.OriginAlias, 0)
		}
	}

	st.compact()
}

// firstColumn returns the leftmost unconsumed column whose normalized name
// is one of keys.
func (st *resolution) firstColumn(keys []string) (int, bool) {
	want := make(map[string]bool, len(keys))

	for _, k := range keys {
		if k != "" {
			want[k] = true
		}
	}

	for _, i := range st.available() {
		if want[match.NormalizeIdent(st.columns[i])] {
			return i, true
		}
	}

	return 0, false
}

// matchCoordinates maps latitude and longitude to raw coordinate columns
// that rarely carry a canonical name: latitude or "y" names, longitude or
// "x" names.
// A column naming both axes is ambiguous and skipped, as is a column whose
// sample is not numeric.
func (r *Resolver) matchCoordinates(st *resolution) {
	for pi, f := range st.pending {
		var want, other func(string) bool

		switch f.ID {
		case "latitude":
			want, other = isLatColumn, isLonColumn
		case "longitude":
			want, other = isLonColumn, isLatColumn
		default:
			continue
		}

		for _, i := range st.available() {
			name := st.columns[i]
			if !want(name) || other(name) {
				continue
			}

			if s := st.samples[i]; !s.IsBlank() {
				if _, ok := s.Float(); !ok {
					continue
				}
			}

			st.assign(pi, i, mapping.OriginHeuristic, 0)

			break
		}
	}

	st.compact()
}

func isLatColumn(name string) bool {
	return match.IsLatitudeName(name) || match.HasToken(name, "y")
}

func isLonColumn(name string) bool {
	return match.IsLongitudeName(name) || match.HasToken(name, "x")
}

// pick is one target's best scored column.
type pick struct {
	target int
	column int
	score  int
}

// matchScored scores every unconsumed column against every pending target:
// +5 same type, +3 same category, +2 when the column name contains the
// first token of the target's display name. Each target takes its highest
// scoring column at or above MinScore, leftmost on ties. When two targets
// pick the same column the higher score keeps it, the earlier target on a
// tie; the loser stays unmapped. Calculated targets are never scored: only
// a column naming them may fill them, otherwise they are synthesized. It
// returns the reason for every target it could not map.
func (r *Resolver) matchScored(st *resolution) map[string]string {
	reasons := map[string]string{}
	free := st.available()

	type columnEvidence struct {
		typ      registry.SemanticType
		category registry.Category
		norm     string
	}

	evidence := make(map[int]columnEvidence, len(free))

	for _, i := range free {
		name := st.columns[i]
		t := r.infer.InferType(name, st.samples[i])
		evidence[i] = columnEvidence{
			typ:      t,
			category: r.infer.InferCategory(name, t),
			norm:     match.NormalizeIdent(name),
		}
	}

	var picks []pick

	for pi, f := range st.pending {
		if f.Category == registry.CategoryCalculated {
			reasons[f.ID] = "calculated field, not scored; derived when its inputs are mapped"
			continue
		}

		best := pick{target: pi, column: -1}
		nameToken := firstToken(f.DisplayName)

		for _, i := range free {
			ev := evidence[i]
			score := 0

			if ev.typ == f.Type {
				score += WeightType
			}

			if ev.category == f.Category {
				score += WeightCategory
			}

			if nameToken != "" && containsToken(ev.norm, nameToken) {
				score += WeightName
			}

			if score > best.score {
				best.column, best.score = i, score
			}
		}

		switch {
		case best.column < 0:
			reasons[f.ID] = "no source column scored above zero"
		case best.score < r.config.MinScore:
			reasons[f.ID] = fmt.Sprintf("best scored column %q (%d) below threshold %d",
				st.columns[best.column], best.score, r.config.MinScore)
		default:
			picks = append(picks, best)
		}
	}

	winners := map[int]pick{}

	for _, p := range picks {
		cur, taken := winners[p.column]
		if !taken || p.score > cur.score {
			if taken {
				loser := st.pending[cur.target]
				reasons[loser.ID] = conflictReason(st, cur, p)
			}

			winners[p.column] = p

			continue
		}

		reasons[st.pending[p.target].ID] = conflictReason(st, p, cur)
	}

	for _, p := range picks {
		if w := winners[p.column]; w.target == p.target {
			st.assign(p.target, p.column, mapping.OriginScored, p.score)
		}
	}

	st.compact()

	return reasons
}

func conflictReason(st *resolution, loser, winner pick) string {
	return fmt.Sprintf("column %q went to %s (score %d vs %d)",
		st.columns[loser.column], st.pending[winner.target].ID, winner.score, loser.score)
}

func firstToken(name string) string {
	tokens := match.TokenizeIdent(name)
	if len(tokens) == 0 {
		return ""
	}

	return tokens[0]
}

func containsToken(normalized, token string) bool {
	return token != "" && strings.Contains(normalized, token)
}
