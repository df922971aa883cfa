package mapping

import (
	"fmt"
	"strings"

	"cadnorm/internal/diagnostic"
	"cadnorm/internal/match"
	"cadnorm/internal/registry"
)

// Validate checks a mapping against the registry. This is a structural
// validation only; it doesn't look at any data.
func Validate(fm *FieldMapping, reg *registry.Registry) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if fm == nil {
		res.AddError("mapping_is_nil", "mapping is nil", "", "")
		return res
	}

	if reg == nil {
		res.AddError("registry_is_nil", "registry is nil", "", "")
		return res
	}

	scope := fm.Dialect

	for _, target := range fm.Targets() {
		e := fm.Entries[target]

		if _, ok := reg.Field(target); !ok {
			sugg := match.Suggest([]string{target}, reg.IDs(), match.DefaultSuggestionScore, 3)
			res.Errors = append(res.Errors, diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        "unknown_target",
				Message:     fmt.Sprintf("unknown canonical field %q", target),
				Scope:       scope,
				Field:       target,
				Row:         diagnostic.NoRow,
				Suggestions: sugg.Columns(),
			})
		}

		validateEntry(res, scope, target, e)
	}

	validateFanOut(res, scope, fm)

	return res
}

func validateEntry(res *diagnostic.Diagnostics, scope, target string, e Entry) {
	if e.Source.IsZero() {
		res.AddError("missing_source", "entry has no source column", scope, target)
	}

	if err := e.Rule.Check(); err != nil {
		res.AddError("invalid_rule", err.Error(), scope, target)
	}

	if err := e.Transform.Check(); err != nil {
		res.AddError("invalid_transform", err.Error(), scope, target)
	}

	if e.Origin != "" && !e.Origin.IsValid() {
		res.AddError("invalid_origin", fmt.Sprintf("unknown origin %q", e.Origin), scope, target)
	}

	if e.Score < 0 {
		res.AddWarning("negative_score", fmt.Sprintf("score %d is negative", e.Score), scope, target)
	}
}

// validateFanOut rejects entries that read the same data. Rule entries
// reading different parts of one column may share it.
func validateFanOut(res *diagnostic.Diagnostics, scope string, fm *FieldMapping) {
	readers := map[string][]string{}

	for _, target := range fm.Targets() {
		e := fm.Entries[target]
		if e.Source.IsZero() {
			continue
		}

		key := e.ReadKey()
		readers[key] = append(readers[key], target)
	}

	for _, target := range fm.Targets() {
		e := fm.Entries[target]
		if e.Source.IsZero() {
			continue
		}

		targets := readers[e.ReadKey()]
		if len(targets) < 2 || targets[0] != target {
			continue
		}

		src := e.Source.String()
		if rk := e.Rule.Key(); rk != "" {
			src += " " + rk
		}

		res.AddError("fan_out",
			fmt.Sprintf("source %q feeds %s", src, strings.Join(targets, ", ")),
			scope, target)
	}
}
