package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cadnorm/internal/apperror"
	"cadnorm/internal/common"
	"cadnorm/internal/derive"
	"cadnorm/internal/diagnostic"
	"cadnorm/internal/dialect"
	"cadnorm/internal/logger"
	"cadnorm/internal/mapping"
	"cadnorm/internal/plan"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
	"cadnorm/internal/transform"
	"cadnorm/internal/validate"
)

// CodeOverrideDropped marks an override entry that failed mapping checks.
const CodeOverrideDropped = "override_entry_dropped"

// Engine standardizes batches.
type Engine struct {
	reg       *registry.Registry
	catalog   *dialect.Catalog
	resolver  *plan.Resolver
	transform *transform.Engine
	derive    *derive.Synthesizer
	gate      *validate.Gate
	log       *logger.Logger
}

type options struct {
	log        *logger.Logger
	resolution plan.ResolutionConfig
	extra      bool
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithResolution replaces the auto-mapping configuration.
func WithResolution(cfg plan.ResolutionConfig) Option {
	return func(o *options) { o.resolution = cfg }
}

// WithExtra toggles pass-through of unmapped columns.
func WithExtra(on bool) Option {
	return func(o *options) { o.extra = on }
}

// New builds an Engine. reg and catalog must not be nil.
func New(reg *registry.Registry, catalog *dialect.Catalog, opts ...Option) *Engine {
	o := options{log: logger.Nop(), resolution: plan.DefaultConfig(), extra: true}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		reg:       reg,
		catalog:   catalog,
		resolver:  plan.NewResolver(reg, o.resolution),
		transform: transform.New(reg, transform.WithExtra(o.extra)),
		derive:    derive.New(),
		gate:      validate.New(reg),
		log:       o.log.WithComponent("engine"),
	}
}

// Registry returns the field registry the engine was built with.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Catalog returns the dialect catalog the engine was built with.
func (e *Engine) Catalog() *dialect.Catalog { return e.catalog }

// Request is one batch to standardize.
type Request struct {
	Records []record.SourceRecord
	ToolID  string
	// Override entries win over dialect and auto-mapped ones. Optional.
	Override *mapping.FieldMapping
}

// Plan is the mapping decided for a batch.
type Plan struct {
	Dialect     string                 `json:"dialect,omitempty"`
	Mapping     *mapping.FieldMapping  `json:"mapping"`
	Unmapped    []plan.UnmappedField   `json:"unmapped"`
	Diagnostics diagnostic.Diagnostics `json:"diagnostics"`
}

// UnmappedFields returns the ids of the targets left unmapped.
func (p *Plan) UnmappedFields() []string {
	out := make([]string, len(p.Unmapped))
	for i, u := range p.Unmapped {
		out[i] = u.Target
	}

	return out
}

// Result is a standardized batch.
type Result struct {
	BatchID    string `json:"batchId" yaml:"batchId"`
	ToolID     string `json:"toolId" yaml:"toolId"`
	Plan       `yaml:",inline"`
	Records    []record.StandardizedRecord `json:"records" yaml:"records"`
	Validation validate.BatchReport        `json:"validation" yaml:"validation"`
}

// RowWarnings returns the warnings tied to a specific row.
func (r *Result) RowWarnings() []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic

	for _, w := range r.Diagnostics.Warnings {
		if w.Row != diagnostic.NoRow {
			out = append(out, w)
		}
	}

	return out
}

// Map decides the mapping for a batch without transforming it.
func (e *Engine) Map(ctx context.Context, req Request) (*Plan, error) {
	profile, err := e.check(req)
	if err != nil {
		return nil, err
	}

	return e.plan(logger.WithLogger(ctx, e.log), req, profile), nil
}

// Standardize runs the full pipeline.
func (e *Engine) Standardize(ctx context.Context, req Request) (*Result, error) {
	profile, err := e.check(req)
	if err != nil {
		return nil, err
	}

	res := &Result{BatchID: newBatchID(), ToolID: profile.ID}
	ctx = logger.WithBatch(logger.WithLogger(ctx, e.log), res.BatchID)

	res.Plan = *e.plan(ctx, req, profile)

	recs, diags := e.transform.Apply(req.Records, res.Mapping)
	res.Diagnostics.Merge(diags)

	recs, diags = e.derive.SynthesizeAll(recs)
	res.Diagnostics.Merge(diags)

	res.Records = recs
	res.Validation = e.gate.ValidateBatch(recs, profile)

	logger.Debug(ctx, "batch standardized",
		"records", len(recs),
		"valid_records", res.Validation.ValidRecords,
		"row_warnings", len(res.RowWarnings()),
	)

	return res, nil
}

func (e *Engine) check(req Request) (*registry.ToolProfile, error) {
	if common.IsEmpty(req.Records) {
		return nil, apperror.NewEmptyBatch()
	}

	profile, ok := e.reg.Profile(req.ToolID)
	if !ok {
		known := make([]string, 0)
		for _, p := range e.reg.Profiles() {
			known = append(known, p.ID)
		}

		return nil, apperror.NewUnknownProfile(req.ToolID, known)
	}

	return profile, nil
}

func (e *Engine) plan(ctx context.Context, req Request, profile *registry.ToolProfile) *Plan {
	var diags diagnostic.Diagnostics

	columns := req.Records[0].Columns()
	seed := e.sanitize(&diags, req.Override)

	if d, ok := e.catalog.Detect(columns); ok {
		overlayDialect(seed, d.PreMap(columns))
		logger.Debug(ctx, "dialect detected", "dialect", d.Name)
	}

	res := e.resolver.Resolve(columns, profile.Targets(), req.Records, seed)
	diags.Merge(res.Diagnostics)

	for _, target := range res.Mapping.Targets() {
		entry := res.Mapping.Entries[target]
		logger.Debug(ctx, "field mapped",
			"target", target, "source", entry.Source.String(), "origin", string(entry.Origin), "score", entry.Score)
	}

	return &Plan{
		Dialect:     res.Mapping.Dialect,
		Mapping:     res.Mapping,
		Unmapped:    res.Unmapped,
		Diagnostics: diags,
	}
}

// sanitize returns a copy of override without the entries that fail
// mapping checks. Of several entries reading the same data only the first
// target keeps it.
func (e *Engine) sanitize(diags *diagnostic.Diagnostics, override *mapping.FieldMapping) *mapping.FieldMapping {
	fm := override.Clone()
	readers := map[string]string{}

	for _, target := range fm.Targets() {
		entry := fm.Entries[target]
		if entry.Source.IsZero() {
			continue
		}

		key := entry.ReadKey()
		if first, ok := readers[key]; ok {
			delete(fm.Entries, target)
			diags.AddWarning(CodeOverrideDropped,
				fmt.Sprintf("override entry dropped: source %q already feeds %s", entry.Source.String(), first),
				"override", target)

			continue
		}

		readers[key] = target
	}

	if fm.Len() == 0 {
		return fm
	}

	for _, d := range mapping.Validate(fm, e.reg).Errors {
		if _, ok := fm.Entries[d.Field]; !ok {
			continue
		}

		delete(fm.Entries, d.Field)
		diags.AddWarning(CodeOverrideDropped, "override entry dropped: "+d.Message, "override", d.Field)
	}

	return fm
}

// overlayDialect adds dialect entries for targets the seed leaves open,
// skipping direct entries whose column the seed already reads and entries
// that read the same data as a seed entry.
func overlayDialect(seed, pre *mapping.FieldMapping) {
	consumed := seed.ConsumedColumns()

	reads := make(map[string]bool, seed.Len())
	for _, e := range seed.Entries {
		reads[e.ReadKey()] = true
	}

	for _, target := range pre.Targets() {
		entry := pre.Entries[target]
		if seed.Has(target) || reads[entry.ReadKey()] || (entry.IsDirect() && consumed[entry.Source.Key()]) {
			continue
		}

		seed.Set(target, entry)
		reads[entry.ReadKey()] = true
	}

	if seed.Dialect == "" {
		seed.Dialect = pre.Dialect
	}
}

func newBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
