package transform

import (
	"cadnorm/internal/diagnostic"
	"cadnorm/internal/mapping"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

// Diagnostic codes for row warnings.
const (
	CodeExtractFailed   = "extract_failed"
	CodeTransformFailed = "transform_failed"
)

// Engine applies mappings. It is stateless and safe for concurrent use.
type Engine struct {
	reg   *registry.Registry
	extra bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtra toggles passing unmapped source columns through as Extra.
func WithExtra(on bool) Option {
	return func(e *Engine) { e.extra = on }
}

// New returns an Engine. Unmapped columns pass through by default.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{reg: reg, extra: true}
	for _, o := range opts {
		o(e)
	}

	return e
}

// Apply maps every record. Blank source values leave the target absent;
// failed conversions keep the raw value and add a row warning.
func (e *Engine) Apply(records []record.SourceRecord, fm *mapping.FieldMapping) ([]record.StandardizedRecord, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	targets := fm.Targets()
	transforms := make(map[string]*mapping.TransformConfig, len(targets))

	for _, id := range targets {
		transforms[id] = e.transformFor(id, fm.Entries[id])
	}

	out := make([]record.StandardizedRecord, len(records))

	for i, rec := range records {
		std := record.NewStandardized()

		for _, id := range targets {
			e.applyField(&diags, i, rec, id, fm.Entries[id], transforms[id], std)
		}

		if e.extra {
			std.Extra = passthrough(rec, fm)
		}

		out[i] = std
	}

	return out, diags
}

func (e *Engine) applyField(
	diags *diagnostic.Diagnostics,
	row int,
	rec record.SourceRecord,
	id string,
	entry mapping.Entry,
	tc *mapping.TransformConfig,
	std record.StandardizedRecord,
) {
	raw, ok := entry.Source.Resolve(rec)
	if !ok || raw.IsBlank() {
		return
	}

	v, ok := entry.Rule.Extract(raw)
	if !ok {
		diags.AddRowWarning(CodeExtractFailed,
			"could not apply "+string(entry.Rule.Kind)+" rule", row, id, raw.String())
		std.Set(id, raw)

		return
	}

	if v.IsBlank() {
		return
	}

	converted, err := Convert(v, tc)
	if err != nil {
		diags.AddRowWarning(CodeTransformFailed, err.Error(), row, id, raw.String())
		std.Set(id, raw)

		return
	}

	std.Set(id, converted)
}

// transformFor returns the entry's transform, or the target type's default.
func (e *Engine) transformFor(id string, entry mapping.Entry) *mapping.TransformConfig {
	if entry.Transform != nil {
		return entry.Transform
	}

	if e.reg != nil {
		if f, ok := e.reg.Field(id); ok {
			return mapping.DefaultTransform(f.Type)
		}
	}

	return mapping.DefaultTransform(registry.TypeText)
}

// passthrough returns the non-blank cells of columns no entry reads.
func passthrough(rec record.SourceRecord, fm *mapping.FieldMapping) map[string]record.Value {
	cols := rec.Columns()
	used := fm.SourcedColumns(cols)

	var extra map[string]record.Value

	for i, c := range cols {
		if used[c] {
			continue
		}

		v, _ := rec.At(i)
		if v.IsBlank() {
			continue
		}

		if extra == nil {
			extra = map[string]record.Value{}
		}

		extra[c] = record.Text(v.String())
	}

	return extra
}
