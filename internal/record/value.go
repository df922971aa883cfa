package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cadnorm/internal/common"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindNull is an absent cell.
	KindNull Kind = iota
	// KindText is a string cell.
	KindText
	// KindNumeric is a numeric cell.
	KindNumeric
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return common.UnknownStr
	}
}

// Value is a raw or normalized cell value. The zero Value is Null.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Numeric wraps a number. NaN becomes Null.
func Numeric(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}

	return Value{kind: KindNumeric, num: f}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBlank reports whether v is Null or whitespace-only text.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	default:
		return false
	}
}

// String renders the value as text. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric reading of v. Text is parsed after trimming.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumeric:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumeric:
		return v.num == o.num
	default:
		return true
	}
}

// GoString is used by %#v and spew dumps.
func (v Value) GoString() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", v.text)
	case KindNumeric:
		return fmt.Sprintf("Numeric(%v)", v.num)
	default:
		return "Null"
	}
}

// MarshalJSON emits null, a string, or a number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumeric:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML emits null, a string, or a number.
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindText:
		return v.text, nil
	case KindNumeric:
		return v.num, nil
	default:
		return nil, nil
	}
}

// UnmarshalJSON accepts null, strings, and numbers. Booleans become text.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String()), nil //nolint:nilerr // keep oversized numbers verbatim
		}

		return Numeric(f), nil
	case float64:
		return Numeric(x), nil
	case float32:
		return Numeric(float64(x)), nil
	case int:
		return Numeric(float64(x)), nil
	case int64:
		return Numeric(float64(x)), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported cell type %T", raw)
	}
}
