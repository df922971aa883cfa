package plan

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadnorm/internal/dialect"
	"cadnorm/internal/mapping"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(registry.Default(), DefaultConfig())
}

func row(cols []string, vals ...any) record.SourceRecord {
	values := make([]record.Value, len(vals))

	for i, v := range vals {
		rv, err := record.FromAny(v)
		if err != nil {
			panic(err)
		}

		values[i] = rv
	}

	return record.NewSourceRecord(cols, values)
}

func sourceOf(t *testing.T, res *Result, target string) string {
	t.Helper()

	e, ok := res.Mapping.Get(target)
	require.True(t, ok, "target %s not mapped; unmapped: %+v", target, res.Unmapped)

	return e.Source.String()
}

func TestResolve_AliasTier(t *testing.T) {
	cols := []string{"Call Number", "Unit Name", "Incident Date", "Incident Time"}

	res := newResolver(t).Resolve(cols, []string{"incidentId", "unitId", "incidentDate", "incidentTime"}, nil, nil)

	assert.Equal(t, "Call Number", sourceOf(t, res, "incidentId"))
	assert.Equal(t, mapping.OriginAlias, res.Mapping.Entries["incidentId"].Origin)
	assert.Equal(t, "Unit Name", sourceOf(t, res, "unitId"))
	assert.Equal(t, mapping.OriginExact, res.Mapping.Entries["incidentDate"].Origin)
	assert.Equal(t, mapping.OriginExact, res.Mapping.Entries["incidentTime"].Origin)
	assert.Empty(t, res.Unmapped)
}

func TestResolve_ExactTierRunsBeforeAliasForAllTargets(t *testing.T) {
	// "Date" is an alias of incidentDate and sits left of the exact match.
	cols := []string{"Date", "INCIDENT_DATE"}

	res := newResolver(t).Resolve(cols, []string{"incidentDate"}, nil, nil)

	assert.Equal(t, "INCIDENT_DATE", sourceOf(t, res, "incidentDate"))
}

func TestResolve_ExactMatchOnIDOrDisplayName(t *testing.T) {
	cols := []string{"on_scene_time", "Station"}

	res := newResolver(t).Resolve(cols, []string{"onSceneTime", "stationId"}, nil, nil)

	assert.Equal(t, "on_scene_time", sourceOf(t, res, "onSceneTime"))
	assert.Equal(t, "Station", sourceOf(t, res, "stationId"))
	assert.Equal(t, mapping.OriginExact, res.Mapping.Entries["stationId"].Origin)
}

func TestResolve_DefaultTransforms(t *testing.T) {
	cols := []string{"Incident Date", "Latitude", "Narrative"}

	res := newResolver(t).Resolve(cols, []string{"incidentDate", "latitude", "narrative"}, nil, nil)

	assert.Equal(t, mapping.DefaultTransform(registry.TypeDate), res.Mapping.Entries["incidentDate"].Transform)
	assert.Equal(t, registry.TypeCoordinate, res.Mapping.Entries["latitude"].Transform.Type)
	assert.Equal(t, mapping.CaseTrim, res.Mapping.Entries["narrative"].Transform.TextCase)
}

func TestResolve_SeedIsKeptAndConsumesColumns(t *testing.T) {
	seed := mapping.New()
	seed.Set("narrative", mapping.Entry{Source: mapping.Column("call number"), Origin: mapping.OriginOverride})

	cols := []string{"Call Number", "Unit"}

	res := newResolver(t).Resolve(cols, []string{"incidentId", "narrative", "unitId"}, nil, seed)

	assert.Equal(t, "call number", sourceOf(t, res, "narrative"))
	assert.Equal(t, mapping.OriginOverride, res.Mapping.Entries["narrative"].Origin)
	assert.False(t, res.Mapping.Has("incidentId"), "Call Number is consumed by the seed")
	assert.Equal(t, "Unit", sourceOf(t, res, "unitId"))
	assert.Equal(t, []string{"incidentId"}, res.UnmappedTargets())

	assert.Equal(t, 1, seed.Len(), "seed is not modified")
}

func TestResolve_PositionalSeedConsumesColumn(t *testing.T) {
	seed := mapping.New()
	seed.Set("narrative", mapping.Entry{Source: mapping.Position(0), Origin: mapping.OriginOverride})

	res := newResolver(t).Resolve([]string{"Call Number"}, []string{"incidentId"}, nil, seed)

	assert.False(t, res.Mapping.Has("incidentId"))
}

func TestResolve_CoordinateHeuristic(t *testing.T) {
	tests := []struct {
		name    string
		cols    []string
		samples []any
		wantLat string
		wantLon string
	}{
		{
			name:    "y and x tokens",
			cols:    []string{"LatLon", "Y_Pos", "X_Pos"},
			samples: []any{"40.7,-74.0", 40.7128, -74.006},
			wantLat: "Y_Pos",
			wantLon: "X_Pos",
		},
		{
			name:    "prefix tokens leftmost first",
			cols:    []string{"LatDecimal", "LatDegrees", "LngDecimal"},
			samples: []any{40.7128, 40, -74.006},
			wantLat: "LatDecimal",
			wantLon: "LngDecimal",
		},
		{
			name:    "non-numeric sample skipped",
			cols:    []string{"Lat Hemisphere", "Lat Value", "Lon Value"},
			samples: []any{"N", "40.7128", "-74.006"},
			wantLat: "Lat Value",
			wantLon: "Lon Value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []record.SourceRecord{row(tt.cols, tt.samples...)}

			res := newResolver(t).Resolve(tt.cols, []string{"latitude", "longitude"}, rows, nil)

			assert.Equal(t, tt.wantLat, sourceOf(t, res, "latitude"))
			assert.Equal(t, tt.wantLon, sourceOf(t, res, "longitude"))
			assert.Equal(t, mapping.OriginHeuristic, res.Mapping.Entries["latitude"].Origin)
		})
	}
}

func TestResolve_CoordinateHeuristicWholeTokens(t *testing.T) {
	cols := []string{"Long Description", "Latest Status", "Long Term Care", "Lon Value"}

	res := newResolver(t).Resolve(cols, []string{"latitude", "longitude"}, nil, nil)

	assert.Equal(t, "Lon Value", sourceOf(t, res, "longitude"))
	assert.False(t, res.Mapping.Has("latitude"), "%+v", res.Mapping.Entries["latitude"])
}

func TestResolve_ScoredTier(t *testing.T) {
	cols := []string{"Ref", "DispatchStamp"}
	rows := []record.SourceRecord{row(cols, "A-1", "14:32:10")}

	res := newResolver(t).Resolve(cols, []string{"dispatchTime"}, rows, nil)

	e, ok := res.Mapping.Get("dispatchTime")
	require.True(t, ok)
	assert.Equal(t, "DispatchStamp", e.Source.Column)
	assert.Equal(t, mapping.OriginScored, e.Origin)
	assert.Equal(t, WeightType+WeightCategory+WeightName, e.Score)
}

func TestResolve_CalculatedTargetsAreNotScored(t *testing.T) {
	cols := []string{"Call Number", "Priority", "Alarm Level", "Elapsed Minutes"}
	rows := []record.SourceRecord{row(cols, "24-0001", 1, 2, 9.5)}

	res := newResolver(t).Resolve(cols, []string{"responseTimeMinutes", "turnoutTimeMinutes"}, rows, nil)

	assert.Zero(t, res.Mapping.Len(), "%+v", res.Mapping.Entries)
	assert.ElementsMatch(t, []string{"responseTimeMinutes", "turnoutTimeMinutes"}, res.UnmappedTargets())

	for _, u := range res.Unmapped {
		assert.Contains(t, u.Reason, "calculated field")
	}
}

func TestResolve_CalculatedTargetByAlias(t *testing.T) {
	cols := []string{"Alarm Level", "Response Time (min)"}
	rows := []record.SourceRecord{row(cols, 2, 7.2)}

	res := newResolver(t).Resolve(cols, []string{"responseTimeMinutes"}, rows, nil)

	assert.Equal(t, "Response Time (min)", sourceOf(t, res, "responseTimeMinutes"))
	assert.Equal(t, mapping.OriginAlias, res.Mapping.Entries["responseTimeMinutes"].Origin)
}

func TestResolve_ScoredTierNeedsSamples(t *testing.T) {
	cols := []string{"DispatchStamp"}

	res := newResolver(t).Resolve(cols, []string{"dispatchTime"}, nil, nil)

	require.Len(t, res.Unmapped, 1)
	assert.Contains(t, res.Unmapped[0].Reason, "no sample rows")
}

func TestResolve_ScoredConflictHigherScoreWins(t *testing.T) {
	cols := []string{"DispatchStamp"}
	rows := []record.SourceRecord{row(cols, "14:32:10")}

	// onSceneTime scores 8 (type + category), dispatchTime 10.
	res := newResolver(t).Resolve(cols, []string{"onSceneTime", "dispatchTime"}, rows, nil)

	assert.Equal(t, "DispatchStamp", sourceOf(t, res, "dispatchTime"))
	require.Len(t, res.Unmapped, 1)
	assert.Equal(t, "onSceneTime", res.Unmapped[0].Target)
	assert.Contains(t, res.Unmapped[0].Reason, "went to dispatchTime")
}

func TestResolve_ScoredConflictTieGoesToEarlierTarget(t *testing.T) {
	cols := []string{"Stamp2"}
	rows := []record.SourceRecord{row(cols, "08:00")}

	res := newResolver(t).Resolve(cols, []string{"enRouteTime", "clearTime"}, rows, nil)

	assert.Equal(t, "Stamp2", sourceOf(t, res, "enRouteTime"))
	assert.Equal(t, []string{"clearTime"}, res.UnmappedTargets())
}

func TestResolve_ScoredTieBreaksLeftmost(t *testing.T) {
	cols := []string{"StampA", "StampB"}
	rows := []record.SourceRecord{row(cols, "08:00", "09:00")}

	res := newResolver(t).Resolve(cols, []string{"clearTime"}, rows, nil)

	assert.Equal(t, "StampA", sourceOf(t, res, "clearTime"))
}

func TestResolve_UnmappedSuggestionsAndWarnings(t *testing.T) {
	cols := []string{"Incdnt ID", "Zzz"}

	res := newResolver(t).Resolve(cols, []string{"incidentId"}, nil, nil)

	require.Len(t, res.Unmapped, 1)
	u := res.Unmapped[0]
	assert.Equal(t, "incidentId", u.Target)
	require.NotEmpty(t, u.Suggestions)
	assert.Equal(t, "Incdnt ID", u.Suggestions[0].Column)

	warns := res.Diagnostics.WarningsWithCode("unmapped_field")
	require.Len(t, warns, 1)
	assert.Equal(t, []string{"Incdnt ID"}, warns[0].Suggestions)
}

func TestResolve_UnknownTargetIsWarned(t *testing.T) {
	res := newResolver(t).Resolve([]string{"a"}, []string{"bogus"}, nil, nil)

	assert.Zero(t, res.Mapping.Len())
	assert.Len(t, res.Diagnostics.WarningsWithCode("unknown_target"), 1)
	assert.Empty(t, res.Unmapped)
}

func TestResolve_Idempotent(t *testing.T) {
	cols := []string{"Call Number", "Unit Name", "DispatchStamp", "Arrvd", "Y_Pos", "X_Pos", "Lvl", "House"}
	rows := []record.SourceRecord{row(cols, "24-0001", "E12", "14:32:10", "2:40 PM", 40.71, -74.0, "3", "Station 12")}
	targets := registry.Default().IDs()

	r := newResolver(t)
	first := r.Resolve(cols, targets, rows, nil)
	second := r.Resolve(cols, targets, rows, nil)

	assert.Equal(t, first.Mapping, second.Mapping)
	assert.Equal(t, first.Unmapped, second.Unmapped)
}

func TestResolve_NoFanOut(t *testing.T) {
	fixtures := [][]string{
		{"Call Number", "Unit Name", "Incident Date", "Incident Time"},
		{"DispatchStamp", "Arrvd", "StampA", "StampB", "Lvl"},
		{"Lat", "Y", "Latitude", "LatLon", "X", "Long"},
		{"Date", "Time", "DateTime", "Timestamp", "Event Date"},
	}

	reg := registry.Default()

	for i, cols := range fixtures {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			vals := make([]any, len(cols))
			for j := range vals {
				vals[j] = "08:00"
			}

			res := newResolver(t).Resolve(cols, reg.IDs(), []record.SourceRecord{row(cols, vals...)}, nil)

			assertNoFanOut(t, res.Mapping, reg)
		})
	}
}

func TestResolve_NoFanOutSeededByDialect(t *testing.T) {
	reg := registry.Default()
	catalog := dialect.MustDefault(reg)

	for _, d := range catalog.Dialects() {
		t.Run(d.Name, func(t *testing.T) {
			var cols []string
			for _, r := range d.Rules {
				if !slices.Contains(cols, r.Column) {
					cols = append(cols, r.Column)
				}
			}

			slices.Sort(cols)
			cols = append(cols, "Priority Level", "Alarm Level", "Notes")

			vals := make([]any, len(cols))
			for j := range vals {
				vals[j] = "20240115143210"
			}

			res := newResolver(t).Resolve(cols, reg.IDs(), []record.SourceRecord{row(cols, vals...)}, d.PreMap(cols))

			assertNoFanOut(t, res.Mapping, reg)
		})
	}
}

func assertNoFanOut(t *testing.T, fm *mapping.FieldMapping, reg *registry.Registry) {
	t.Helper()

	seen := map[string]string{}
	for _, target := range fm.Targets() {
		key := fm.Entries[target].ReadKey()
		prev, dup := seen[key]
		assert.False(t, dup, "%s feeds %s and %s", key, prev, target)
		seen[key] = target
	}

	res := mapping.Validate(fm, reg)
	assert.True(t, res.IsValid(), "%v", res.Error())
}

// labeledFixture is one column offered to one target, with the expected
// outcome of the scored tier.
type labeledFixture struct {
	target string
	column string
	sample any
	want   bool
}

var scoredFixtures = []labeledFixture{
	{"dispatchTime", "DispatchStamp", "14:32:10", true}, // 10
	{"onSceneTime", "Arrvd", "2:40 PM", true},           // 8
	{"priority", "Lvl", "3", true},                      // 5
	{"stationId", "House", "Station 12", true},          // 5
	{"patientAge", "Engine Count", "2", false},          // 5
	{"incidentDate", "Shift Start", "07:00", false},     // 3
	{"latitude", "Temperature", "72.5", false},          // 0
}

func TestResolve_ThresholdSweep(t *testing.T) {
	reg := registry.Default()
	prev := map[int]bool{}

	for threshold := 1; threshold <= 11; threshold++ {
		cfg := DefaultConfig()
		cfg.MinScore = threshold
		r := NewResolver(reg, cfg)

		mapped := map[int]bool{}
		truePos, falsePos, positives := 0, 0, 0

		for i, fx := range scoredFixtures {
			cols := []string{fx.column}
			res := r.Resolve(cols, []string{fx.target}, []record.SourceRecord{row(cols, fx.sample)}, nil)

			if fx.want {
				positives++
			}

			if _, ok := res.Mapping.Get(fx.target); ok {
				mapped[i] = true

				if fx.want {
					truePos++
				} else {
					falsePos++
				}
			}
		}

		t.Logf("threshold %2d: recall %d/%d, false positives %d", threshold, truePos, positives, falsePos)

		if threshold > 1 {
			for i := range mapped {
				assert.True(t, prev[i], "threshold %d maps fixture %d that threshold %d rejected", threshold, i, threshold-1)
			}
		}

		if threshold == DefaultMinScore {
			assert.Equal(t, positives, truePos, "shipped threshold keeps every labeled positive")
		}

		if threshold > WeightType+WeightCategory+WeightName {
			assert.Empty(t, mapped)
		}

		prev = mapped
	}
}
