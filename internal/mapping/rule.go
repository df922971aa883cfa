package mapping

import (
	"fmt"
	"strings"

	"cadnorm/internal/chrono"
	"cadnorm/internal/record"
)

// RuleKind selects how a value is extracted from its source column.
type RuleKind string

const (
	// RuleDirect reads the column unmodified.
	RuleDirect RuleKind = "direct"
	// RuleSlice takes a rune range [Start, End) of the column text.
	RuleSlice RuleKind = "slice"
	// RuleSplit takes the date or time part of a combined datetime column.
	RuleSplit RuleKind = "split"
)

// Part selects one half of a combined datetime.
type Part string

const (
	PartDate Part = "date"
	PartTime Part = "time"
)

// Rule is an extraction rule. The zero Rule is direct.
type Rule struct {
	Kind  RuleKind `yaml:"kind" json:"kind"`
	Start int      `yaml:"start,omitempty" json:"start,omitempty"`
	End   int      `yaml:"end,omitempty" json:"end,omitempty"`
	Part  Part     `yaml:"part,omitempty" json:"part,omitempty"`
}

// Slice returns a slice rule.
func Slice(start, end int) *Rule { return &Rule{Kind: RuleSlice, Start: start, End: end} }

// Split returns a split rule.
func Split(part Part) *Rule { return &Rule{Kind: RuleSplit, Part: part} }

// Key identifies the part of a column the rule reads. Direct rules have
// the empty key.
func (r *Rule) Key() string {
	if r == nil {
		return ""
	}

	switch r.Kind {
	case RuleSlice:
		return fmt.Sprintf("slice[%d:%d]", r.Start, r.End)
	case RuleSplit:
		return "split:" + string(r.Part)
	case RuleDirect, "":
		return ""
	default:
		return string(r.Kind)
	}
}

// Check reports a structural problem with the rule.
func (r *Rule) Check() error {
	if r == nil {
		return nil
	}

	switch r.Kind {
	case RuleDirect, "":
		return nil
	case RuleSlice:
		if r.Start < 0 || r.End <= r.Start {
			return fmt.Errorf("slice range [%d,%d) is empty or negative", r.Start, r.End)
		}

		return nil
	case RuleSplit:
		if r.Part != PartDate && r.Part != PartTime {
			return fmt.Errorf("split part %q must be %q or %q", r.Part, PartDate, PartTime)
		}

		return nil
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
}

// Extract applies the rule to a raw cell. The boolean is false when the
// rule could not be applied; the caller then passes v through unchanged.
func (r *Rule) Extract(v record.Value) (record.Value, bool) {
	if r == nil || v.IsBlank() {
		return v, true
	}

	switch r.Kind {
	case RuleDirect, "":
		return v, true
	case RuleSlice:
		runes := []rune(v.String())
		if r.Start >= len(runes) {
			return record.Null(), true
		}

		end := min(r.End, len(runes))

		return record.Text(strings.TrimSpace(string(runes[r.Start:end]))), true
	case RuleSplit:
		return splitDateTime(v.String(), r.Part)
	default:
		return v, false
	}
}

// splitDateTime returns the normalized date or time of a combined value.
// Unparseable values are cut at the first space or 'T' so the field
// transform still gets a chance at the piece.
func splitDateTime(s string, part Part) (record.Value, bool) {
	s = strings.TrimSpace(s)

	if t, ok := chrono.ParseDateTime(s, chrono.Auto); ok {
		if part == PartDate {
			return record.Text(t.Format("2006-01-02")), true
		}

		return record.Text(chrono.ClockOf(t).String()), true
	}

	datePart, timePart, found := strings.Cut(s, " ")
	if !found {
		datePart, timePart, found = strings.Cut(s, "T")
	}

	if !found {
		// A lone value can only be the date half.
		return record.Text(s), part == PartDate
	}

	if part == PartDate {
		return record.Text(strings.TrimSpace(datePart)), true
	}

	return record.Text(strings.TrimSpace(timePart)), true
}
