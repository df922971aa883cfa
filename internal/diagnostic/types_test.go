package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_AddAndMerge(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())

	d.AddWarning("unmapped_field", "no column for latitude", "", "latitude")
	d.AddRowWarning("parse_failed", "unparseable date", 3, "incidentDate", "13/45/2024")

	var other Diagnostics
	other.AddError("unknown_target", "unknown canonical field", "mapping", "foo")
	other.AddInfo("dialect", "detected", "tyler-newworld", "")

	d.Merge(other)

	assert.True(t, d.HasErrors())
	assert.Len(t, d.Warnings, 2)
	assert.Len(t, d.Infos, 1)
	require.Error(t, d.Error())
	assert.Equal(t, "[mapping] foo: [unknown_target] unknown canonical field", d.Error().Error())

	rows := d.WarningsWithCode("parse_failed")
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Row)
	assert.Equal(t, NoRow, d.Warnings[0].Row)
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{
			name: "plain",
			d:    Diagnostic{Message: "hello", Row: NoRow},
			want: "hello",
		},
		{
			name: "row with raw",
			d:    Diagnostic{Code: "parse_failed", Message: "bad time", Row: 0, Field: "dispatchTime", Raw: "25:61"},
			want: `row 0 dispatchTime: [parse_failed] bad time (raw "25:61")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}
