package match

import "sort"

// Suggestion is a source column ranked against a target name.
type Suggestion struct {
	Column   string  `yaml:"column" json:"column"`
	Position int     `yaml:"position" json:"position"`
	Score    float64 `yaml:"score" json:"score"`
}

// SuggestionList is a ranked list of suggestions.
type SuggestionList []Suggestion

// Suggest ranks columns by their best normalized similarity to any of the
// target names (display name, id, aliases). Columns scoring below minScore
// are dropped; at most limit suggestions are returned (limit <= 0 means all).
func Suggest(targetNames []string, columns []string, minScore float64, limit int) SuggestionList {
	var out SuggestionList

	for pos, col := range columns {
		best := 0.0

		for _, name := range targetNames {
			score := NormalizedLevenshteinScore(col, name)
			if stripped := NormalizedLevenshteinScoreWithSuffixStrip(col, name); stripped > score {
				score = stripped
			}

			if score > best {
				best = score
			}
		}

		if best < minScore {
			continue
		}

		out = append(out, Suggestion{Column: col, Position: pos, Score: best})
	}

	sort.Sort(out)

	return out.Top(limit)
}

// Len implements sort.Interface.
func (s SuggestionList) Len() int { return len(s) }

// Swap implements sort.Interface.
func (s SuggestionList) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by column position for determinism.
func (s SuggestionList) Less(i, j int) bool {
	if s[i].Score != s[j].Score {
		return s[i].Score > s[j].Score
	}

	return s[i].Position < s[j].Position
}

// Top returns the top n suggestions. n <= 0 returns all.
func (s SuggestionList) Top(n int) SuggestionList {
	if n <= 0 || n >= len(s) {
		return s
	}

	return s[:n]
}

// Columns returns just the column names.
func (s SuggestionList) Columns() []string {
	out := make([]string, len(s))
	for i, sg := range s {
		out[i] = sg.Column
	}

	return out
}

// DefaultSuggestionScore is the minimum similarity for a column to be
// offered as a suggestion for an unmapped target.
const DefaultSuggestionScore = 0.5
