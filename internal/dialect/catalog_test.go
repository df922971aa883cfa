package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadnorm/internal/mapping"
	"cadnorm/internal/registry"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default(registry.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"hexagon-icad", "eso-fire", "motorola-premierone", "tyler-newworld", "centralsquare-inform",
	}, c.Names())

	d, ok := c.Get("tyler-newworld")
	require.True(t, ok)
	assert.Equal(t, "Tyler Technologies", d.Vendor)

	_, ok = c.Get("nope")
	assert.False(t, ok)
}

func TestLoad_Rejects(t *testing.T) {
	reg := registry.Default()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n      incidentNumber: {column: X}\n",
			wantErr: `unknown field "incidentNumber"`,
		},
		{
			name:    "rule without column",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n      incidentId: {kind: direct}\n",
			wantErr: "has no column",
		},
		{
			name:    "bad split part",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n      incidentDate: {column: X, kind: split, part: day}\n",
			wantErr: "split part",
		},
		{
			name:    "bad format",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n      incidentDate: {column: X, format: '--'}\n",
			wantErr: "no date or time tokens",
		},
		{
			name:    "empty fingerprint",
			yaml:    "dialects:\n  - name: a\n    rules: {}\n",
			wantErr: "empty fingerprint",
		},
		{
			name:    "duplicate name",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n  - name: a\n    fingerprint: [Y]\n",
			wantErr: "duplicate name",
		},
		{
			name:    "shadowed",
			yaml:    "dialects:\n  - name: generic\n    fingerprint: [X]\n  - name: specific\n    fingerprint: [X, Y]\n",
			wantErr: `shadowed by "generic"`,
		},
		{
			name: "same split part twice",
			yaml: "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n" +
				"      incidentTime: {column: X, kind: split, part: time}\n" +
				"      callReceivedTime: {column: x, kind: split, part: time}\n",
			wantErr: `"callReceivedTime" and "incidentTime" read the same part of column`,
		},
		{
			name: "same slice twice",
			yaml: "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n" +
				"      incidentTime: {column: X, kind: slice, start: 8, end: 14}\n" +
				"      dispatchTime: {column: X, kind: slice, start: 8, end: 14}\n",
			wantErr: "read the same part",
		},
		{
			name:    "one column read directly twice",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    rules:\n      incidentId: {column: X}\n      unitId: {column: X}\n",
			wantErr: "read the same part",
		},
		{
			name:    "unknown key",
			yaml:    "dialects:\n  - name: a\n    fingerprint: [X]\n    colour: red\n",
			wantErr: "colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml), reg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefault_PreMapsAreValid(t *testing.T) {
	reg := registry.Default()
	c := MustDefault(reg)

	for _, d := range c.Dialects() {
		t.Run(d.Name, func(t *testing.T) {
			var columns []string
			for _, r := range d.Rules {
				columns = append(columns, r.Column)
			}

			res := mapping.Validate(d.PreMap(columns), reg)
			assert.True(t, res.IsValid(), "%v", res.Error())
		})
	}
}

func TestDetect(t *testing.T) {
	c := MustDefault(registry.Default())

	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{"premierone", []string{"INCIDENT_NO", "CALL_RECEIVED_DATE", "UNIT_ID"}, "motorola-premierone"},
		{"case insensitive", []string{"incident_no", "Call_Received_Date"}, "motorola-premierone"},
		{"new world", []string{"Master_Incident_Number", "Response_Date", "Problem"}, "tyler-newworld"},
		{"hexagon", []string{"EID", "NUM_1", "AD_TS", "DS_TS"}, "hexagon-icad"},
		{"eso", []string{"Incident Number", "Alarm Date Time", "Incident Type Code"}, "eso-fire"},
		{"inform", []string{"CFS_NUMBER", "CREATE_DATETIME"}, "centralsquare-inform"},
		{"partial fingerprint", []string{"INCIDENT_NO", "CALL_DATE"}, ""},
		{"generic export", []string{"Call Number", "Unit Name", "Incident Date", "Incident Time"}, ""},
		{"no columns", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := c.Detect(tt.columns)
			if tt.want == "" {
				assert.False(t, ok)
				assert.Nil(t, d)

				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestDetect_PriorityOrder(t *testing.T) {
	reg := registry.Default()
	c, err := New([]Dialect{
		{Name: "first", Fingerprint: []string{"A", "B"}},
		{Name: "second", Fingerprint: []string{"C"}},
	}, reg)
	require.NoError(t, err)

	d, ok := c.Detect([]string{"C", "B", "A"})
	require.True(t, ok)
	assert.Equal(t, "first", d.Name)
}

func TestPreMap_PremierOne(t *testing.T) {
	c := MustDefault(registry.Default())
	columns := []string{"INCIDENT_NO", "CALL_RECEIVED_DATE", "DISPATCH_DATE", "latitude", "Notes"}

	d, ok := c.Detect(columns)
	require.True(t, ok)

	fm := d.PreMap(columns)
	assert.Equal(t, "motorola-premierone", fm.Dialect)

	id, ok := fm.Get("incidentId")
	require.True(t, ok)
	assert.Equal(t, "INCIDENT_NO", id.Source.Column)
	assert.Equal(t, mapping.OriginDialect, id.Origin)
	assert.Nil(t, id.Rule)
	assert.Equal(t, registry.TypeText, id.Transform.Type)

	date := fm.Entries["incidentDate"]
	require.NotNil(t, date.Rule)
	assert.Equal(t, mapping.RuleSplit, date.Rule.Kind)
	assert.Equal(t, mapping.PartDate, date.Rule.Part)
	assert.Equal(t, registry.TypeDate, date.Transform.Type)

	lat := fm.Entries["latitude"]
	assert.Equal(t, "latitude", lat.Source.Column, "source uses the batch's spelling")

	assert.False(t, fm.Has("onSceneTime"), "ONSCENE_DATE is not in the batch")
	assert.False(t, fm.Has("narrative"))

	assert.True(t, mapping.Validate(fm, registry.Default()).IsValid())
}

func TestPreMap_HexagonSliceFormat(t *testing.T) {
	c := MustDefault(registry.Default())
	columns := []string{"EID", "NUM_1", "AD_TS", "DS_TS", "AR_TS"}

	d, ok := c.Detect(columns)
	require.True(t, ok)

	fm := d.PreMap(columns)

	date := fm.Entries["incidentDate"]
	require.NotNil(t, date.Rule)
	assert.Equal(t, mapping.RuleSlice, date.Rule.Kind)
	assert.Equal(t, "YYYYMMDD", date.Transform.SourceFormat)

	on := fm.Entries["onSceneTime"]
	assert.Equal(t, "AR_TS", on.Source.Column)
	assert.Equal(t, "HHmmss", on.Transform.SourceFormat)
	assert.Equal(t, "HH:mm:ss", on.Transform.TargetFormat)
}

func TestRank(t *testing.T) {
	c := MustDefault(registry.Default())

	ranked := c.Rank([]string{"INCIDENT_NO", "EID"})
	require.Len(t, ranked, 5)

	byName := map[string]Candidate{}
	for _, r := range ranked {
		byName[r.Name] = r
	}

	assert.InDelta(t, 0.5, byName["motorola-premierone"].Coverage, 1e-9)
	assert.Equal(t, []string{"CALL_RECEIVED_DATE"}, byName["motorola-premierone"].Missing)
	assert.InDelta(t, 1.0/3.0, byName["hexagon-icad"].Coverage, 1e-9)
	assert.Zero(t, byName["tyler-newworld"].Coverage)
}
