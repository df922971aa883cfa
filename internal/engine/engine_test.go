package engine_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"cadnorm/internal/apperror"
	"cadnorm/internal/dialect"
	"cadnorm/internal/engine"
	"cadnorm/internal/logger"
	"cadnorm/internal/mapping"
	"cadnorm/internal/plan"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()

	reg := registry.Default()
	cat, err := dialect.Default(reg)
	require.NoError(t, err)

	return engine.New(reg, cat, opts...)
}

func batch(columns []string, rows ...[]string) []record.SourceRecord {
	out := make([]record.SourceRecord, len(rows))

	for i, row := range rows {
		values := make([]record.Value, len(row))
		for j, cell := range row {
			values[j] = record.Text(cell)
		}

		out[i] = record.NewSourceRecord(columns, values)
	}

	return out
}

func genericBatch() []record.SourceRecord {
	return batch(
		[]string{"Call Number", "Unit Name", "Incident Date", "Incident Time", "Dispatch Time", "On Scene Time", "Location"},
		[]string{"24-000123", "E12", "03/15/2024", "14:30", "14:32:10", "14:39:22", "40.7128,-74.0060"},
		[]string{"24-000124", "M4", "03/15/2024", "23:40", "23:50:00", "00:05:00", "40.70,-74.01"},
	)
}

func TestStandardize_StructuralErrors(t *testing.T) {
	e := newEngine(t)

	t.Run("empty batch", func(t *testing.T) {
		res, err := e.Standardize(context.Background(), engine.Request{ToolID: "response-time"})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, apperror.IsEmptyBatch(err))
	})

	t.Run("empty batch wins over unknown profile", func(t *testing.T) {
		_, err := e.Standardize(context.Background(), engine.Request{ToolID: "nope"})
		assert.True(t, apperror.IsEmptyBatch(err))
	})

	t.Run("unknown profile", func(t *testing.T) {
		res, err := e.Standardize(context.Background(), engine.Request{Records: genericBatch(), ToolID: "heatmap"})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, apperror.IsUnknownProfile(err))

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Contains(t, appErr.Details["known"], "response-time")
	})

	t.Run("map shares the checks", func(t *testing.T) {
		_, err := e.Map(context.Background(), engine.Request{ToolID: "response-time"})
		assert.True(t, apperror.IsEmptyBatch(err))
	})
}

func TestStandardize_GenericExport(t *testing.T) {
	res, err := newEngine(t).Standardize(context.Background(), engine.Request{
		Records: genericBatch(),
		ToolID:  "response-time",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Empty(t, res.Dialect)
	require.Len(t, res.Records, 2)

	id, ok := res.Mapping.Get("incidentId")
	require.True(t, ok)
	assert.Equal(t, "Call Number", id.Source.Column)
	assert.Equal(t, mapping.OriginAlias, id.Origin)

	first := res.Records[0]
	assert.Equal(t, "24-000123", first.Fields["incidentId"].String())
	assert.Equal(t, "2024-03-15", first.Fields["incidentDate"].String())
	assert.Equal(t, "14:30:00", first.Fields["incidentTime"].String())
	assert.Equal(t, "7.2", first.Fields["responseTimeMinutes"].String())
	assert.Equal(t, "40.7128", first.Fields["latitude"].String())
	assert.Equal(t, "-74.006", first.Fields["longitude"].String())
	assert.Equal(t, "2024-03-15T14:30:00", first.Fields["incidentDateTime"].String())

	second := res.Records[1]
	assert.Equal(t, "15", second.Fields["responseTimeMinutes"].String())

	assert.True(t, res.Validation.Valid, spew.Sdump(res.Validation))
	assert.Equal(t, 2, res.Validation.ValidRecords)

	warnings := res.RowWarnings()
	require.Len(t, warnings, 1, spew.Sdump(warnings))
	assert.Equal(t, "overnight_wrap", warnings[0].Code)
	assert.Equal(t, 1, warnings[0].Row)

	assert.Contains(t, res.Plan.UnmappedFields(), "stationId")
}

// A PremierOne export is recognized by its fingerprint and mapped by the
// dialect rules without falling back to scoring.
func TestStandardize_DialectExport(t *testing.T) {
	recs := batch(
		[]string{"INCIDENT_NO", "CALL_RECEIVED_DATE", "DISPATCH_DATE", "ONSCENE_DATE", "LATITUDE", "LONGITUDE"},
		[]string{"P24-77", "03/15/2024 14:30:05", "03/15/2024 14:32:10", "03/15/2024 14:39:22", "40.7128", "-74.0060"},
	)

	res, err := newEngine(t).Standardize(context.Background(), engine.Request{Records: recs, ToolID: "response-time"})
	require.NoError(t, err)

	assert.Equal(t, "motorola-premierone", res.Dialect)

	id, ok := res.Mapping.Get("incidentId")
	require.True(t, ok)
	assert.Equal(t, "INCIDENT_NO", id.Source.Column)
	assert.Equal(t, mapping.OriginDialect, id.Origin)

	for _, target := range res.Mapping.Targets() {
		assert.NotEqual(t, mapping.OriginScored, res.Mapping.Entries[target].Origin, target)
	}

	assert.True(t, mapping.Validate(res.Mapping, registry.Default()).IsValid())

	reads := map[string]string{}
	for _, target := range res.Mapping.Targets() {
		key := res.Mapping.Entries[target].ReadKey()
		assert.NotContains(t, reads, key, "%s also feeds %s", key, target)
		reads[key] = target
	}

	rec := res.Records[0]
	assert.Equal(t, "P24-77", rec.Fields["incidentId"].String())
	assert.Equal(t, "2024-03-15", rec.Fields["incidentDate"].String())
	assert.Equal(t, "14:32:10", rec.Fields["dispatchTime"].String())
	assert.Equal(t, "7.2", rec.Fields["responseTimeMinutes"].String())
	assert.True(t, res.Validation.Valid, spew.Sdump(res.Validation))
}

// Leftover numeric columns must not be taken for the calculated intervals;
// those are synthesized from the dispatch and on-scene times.
func TestStandardize_ExtraNumericColumnsKeepDerivedResponseTime(t *testing.T) {
	recs := batch(
		[]string{"Call Number", "Incident Date", "Dispatch Time", "On Scene Time", "Location", "Priority", "Alarm Level"},
		[]string{"24-000123", "03/15/2024", "14:32:10", "14:39:22", "40.7128,-74.0060", "1", "2"},
	)

	res, err := newEngine(t).Standardize(context.Background(), engine.Request{Records: recs, ToolID: "response-time"})
	require.NoError(t, err)

	assert.False(t, res.Mapping.Has("responseTimeMinutes"), spew.Sdump(res.Mapping.Entries["responseTimeMinutes"]))
	assert.False(t, res.Mapping.Has("turnoutTimeMinutes"))
	assert.Equal(t, "7.2", res.Records[0].Fields["responseTimeMinutes"].String())
	assert.Equal(t, "2", res.Records[0].Extra["Alarm Level"].String())
}

func TestStandardize_OverrideSameRulePartPruned(t *testing.T) {
	recs := batch([]string{"Ref", "Received"}, []string{"R-1", "2024-03-15 14:30:05"})

	override := mapping.New()
	override.Set("incidentId", mapping.Entry{Source: mapping.Column("Ref")})
	override.Set("incidentTime", mapping.Entry{Source: mapping.Column("Received"), Rule: mapping.Split(mapping.PartTime)})
	override.Set("callReceivedTime", mapping.Entry{Source: mapping.Column("Received"), Rule: mapping.Split(mapping.PartTime)})
	override.Set("incidentDate", mapping.Entry{Source: mapping.Column("Received"), Rule: mapping.Split(mapping.PartDate)})

	res, err := newEngine(t).Standardize(context.Background(), engine.Request{
		Records: recs, ToolID: "incident-map", Override: override,
	})
	require.NoError(t, err)

	assert.True(t, res.Mapping.Has("callReceivedTime"))
	assert.False(t, res.Mapping.Has("incidentTime"))
	assert.True(t, res.Mapping.Has("incidentDate"))
	assert.Len(t, res.Diagnostics.WarningsWithCode(engine.CodeOverrideDropped), 1)
	assert.Equal(t, "2024-03-15", res.Records[0].Fields["incidentDate"].String())
}

func TestStandardize_Override(t *testing.T) {
	recs := batch(
		[]string{"Ref", "Call Number", "Incident Date", "Dispatch Time", "On Scene Time", "Location"},
		[]string{"R-1", "C-9", "2024-03-15", "10:00:00", "10:06:00", "40.1,-74.2"},
	)

	override := mapping.New()
	override.Set("incidentId", mapping.Entry{Source: mapping.Column("Ref")})
	override.Set("bogusField", mapping.Entry{Source: mapping.Column("Call Number")})

	res, err := newEngine(t).Standardize(context.Background(), engine.Request{
		Records: recs, ToolID: "response-time", Override: override,
	})
	require.NoError(t, err)

	assert.Equal(t, "R-1", res.Records[0].Fields["incidentId"].String())
	assert.False(t, res.Mapping.Has("bogusField"))
	assert.Len(t, res.Diagnostics.WarningsWithCode(engine.CodeOverrideDropped), 1)

	// The caller's mapping is not modified.
	assert.True(t, override.Has("bogusField"))
}

func TestStandardize_OverrideFanOutPruned(t *testing.T) {
	recs := batch([]string{"Ref", "Date"}, []string{"R-1", "2024-03-15"})

	override := mapping.New()
	override.Set("incidentId", mapping.Entry{Source: mapping.Column("Ref")})
	override.Set("unitId", mapping.Entry{Source: mapping.Column("Ref")})
	override.Set("stationId", mapping.Entry{Source: mapping.Column("ref")})

	res, err := newEngine(t).Standardize(context.Background(), engine.Request{
		Records: recs, ToolID: "incident-map", Override: override,
	})
	require.NoError(t, err)

	readers := 0

	for _, target := range res.Mapping.Targets() {
		if res.Mapping.Entries[target].Source.Key() == "ref" {
			readers++
		}
	}

	assert.Equal(t, 1, readers)
	assert.Equal(t, "R-1", res.Records[0].Fields["incidentId"].String())
	assert.Len(t, res.Diagnostics.WarningsWithCode(engine.CodeOverrideDropped), 2)
}

func TestMap_Idempotent(t *testing.T) {
	e := newEngine(t)
	req := engine.Request{Records: genericBatch(), ToolID: "response-time"}

	a, err := e.Map(context.Background(), req)
	require.NoError(t, err)

	b, err := e.Map(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Mapping, b.Mapping)
	assert.Equal(t, a.Unmapped, b.Unmapped)
}

func TestStandardize_ResolutionOption(t *testing.T) {
	recs := batch([]string{"Ref", "Level"}, []string{"R-1", "2"})

	strict := newEngine(t, engine.WithResolution(plan.ResolutionConfig{MinScore: 100}))
	res, err := strict.Map(context.Background(), engine.Request{Records: recs, ToolID: "incident-map"})
	require.NoError(t, err)

	for _, target := range res.Mapping.Targets() {
		assert.NotEqual(t, mapping.OriginScored, res.Mapping.Entries[target].Origin, target)
	}
}

func TestStandardize_Logs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	res, err := newEngine(t, engine.WithLogger(l)).Standardize(context.Background(), engine.Request{
		Records: genericBatch(), ToolID: "response-time",
	})
	require.NoError(t, err)

	done := logs.FilterMessage("batch standardized").All()
	require.Len(t, done, 1)
	assert.Equal(t, res.BatchID, done[0].ContextMap()["batch_id"])
	assert.Equal(t, "engine", done[0].ContextMap()["component"])
	assert.NotZero(t, logs.FilterMessage("field mapped").Len())
}

func TestStandardize_Concurrent(t *testing.T) {
	e := newEngine(t)

	var g errgroup.Group

	results := make([]*engine.Result, 16)

	for i := range results {
		g.Go(func() error {
			res, err := e.Standardize(context.Background(), engine.Request{
				Records: genericBatch(), ToolID: "response-time",
			})
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}

			results[i] = res

			return nil
		})
	}

	require.NoError(t, g.Wait())

	ids := map[string]bool{}

	for _, res := range results {
		ids[res.BatchID] = true
		assert.Equal(t, results[0].Records, res.Records)
		assert.Equal(t, results[0].Mapping, res.Mapping)
	}

	assert.Len(t, ids, len(results))
}
