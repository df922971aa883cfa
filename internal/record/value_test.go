package record_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cadnorm/internal/record"
)

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		v     record.Value
		kind  record.Kind
		str   string
		blank bool
	}{
		{name: "null", v: record.Null(), kind: record.KindNull, str: "", blank: true},
		{name: "text", v: record.Text("E12"), kind: record.KindText, str: "E12"},
		{name: "whitespace", v: record.Text("  "), kind: record.KindText, str: "  ", blank: true},
		{name: "numeric", v: record.Numeric(7.25), kind: record.KindNumeric, str: "7.25"},
		{name: "integral", v: record.Numeric(15), kind: record.KindNumeric, str: "15"},
		{name: "nan is null", v: record.Numeric(math.NaN()), kind: record.KindNull, str: "", blank: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.Equal(t, tt.str, tt.v.String())
			assert.Equal(t, tt.blank, tt.v.IsBlank())
		})
	}
}

func TestValue_Float(t *testing.T) {
	f, ok := record.Text(" -74.006 ").Float()
	require.True(t, ok)
	assert.InDelta(t, -74.006, f, 1e-12)

	_, ok = record.Text("north").Float()
	assert.False(t, ok)

	_, ok = record.Text("Inf").Float()
	assert.False(t, ok)

	_, ok = record.Null().Float()
	assert.False(t, ok)
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, record.Text("1").Equal(record.Text("1")))
	assert.False(t, record.Text("1").Equal(record.Numeric(1)))
	assert.True(t, record.Null().Equal(record.Value{}))
}

func TestValue_JSON(t *testing.T) {
	in := []record.Value{record.Null(), record.Text("a"), record.Numeric(2.5)}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[null, "a", 2.5]`, string(data))

	var out []record.Value
	require.NoError(t, json.Unmarshal([]byte(`[null, "a", 2.5, true]`), &out))
	assert.Equal(t, []record.Value{record.Null(), record.Text("a"), record.Numeric(2.5), record.Text("true")}, out)

	var bad record.Value
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &bad))
}

func TestValue_YAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]record.Value{
		"a": record.Text("x"),
		"b": record.Numeric(3),
		"c": record.Null(),
	})
	require.NoError(t, err)
	assert.Equal(t, "a: x\nb: 3\nc: null\n", string(data))
}

func TestFromAny(t *testing.T) {
	v, err := record.FromAny(json.Number("12"))
	require.NoError(t, err)
	assert.Equal(t, record.Numeric(12), v)

	v, err = record.FromAny(int64(4))
	require.NoError(t, err)
	assert.Equal(t, record.Numeric(4), v)

	_, err = record.FromAny([]int{1})
	assert.Error(t, err)
}
