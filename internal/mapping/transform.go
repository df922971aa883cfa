package mapping

import (
	"fmt"

	"cadnorm/internal/chrono"
	"cadnorm/internal/registry"
)

// TextCase selects the case normalization applied to text fields.
type TextCase string

const (
	CaseNone       TextCase = "none"
	CaseUpper      TextCase = "upper"
	CaseLower      TextCase = "lower"
	CaseCapitalize TextCase = "capitalize"
	CaseTrim       TextCase = "trim"
)

// IsValid returns true if c is a known text case, or empty.
func (c TextCase) IsValid() bool {
	switch c {
	case "", CaseNone, CaseUpper, CaseLower, CaseCapitalize, CaseTrim:
		return true
	default:
		return false
	}
}

// TransformConfig describes how one field value is normalized.
type TransformConfig struct {
	Type registry.SemanticType `yaml:"type" json:"type"`
	// SourceFormat is "auto" or a token format such as MM/DD/YYYY.
	SourceFormat string `yaml:"source_format,omitempty" json:"sourceFormat,omitempty"`
	// TargetFormat defaults to the ISO form of Type.
	TargetFormat string   `yaml:"target_format,omitempty" json:"targetFormat,omitempty"`
	TextCase     TextCase `yaml:"text_case,omitempty" json:"textCase,omitempty"`
}

// DefaultTransform returns the transform a field of type t gets when the
// mapping does not specify one.
func DefaultTransform(t registry.SemanticType) *TransformConfig {
	switch t {
	case registry.TypeDate:
		return &TransformConfig{Type: t, SourceFormat: chrono.Auto, TargetFormat: chrono.ISODate}
	case registry.TypeTime:
		return &TransformConfig{Type: t, SourceFormat: chrono.Auto, TargetFormat: chrono.ISOTime}
	case registry.TypeDateTime:
		return &TransformConfig{Type: t, SourceFormat: chrono.Auto, TargetFormat: chrono.ISODateTime}
	case registry.TypeCoordinate, registry.TypeNumber:
		return &TransformConfig{Type: t}
	default:
		return &TransformConfig{Type: registry.TypeText, TextCase: CaseTrim}
	}
}

// Check reports a structural problem with the transform.
func (t *TransformConfig) Check() error {
	if t == nil {
		return nil
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("unknown transform type %q", t.Type)
	}

	if !t.TextCase.IsValid() {
		return fmt.Errorf("unknown text case %q", t.TextCase)
	}

	for _, f := range []string{t.SourceFormat, t.TargetFormat} {
		if f == "" || f == chrono.Auto {
			continue
		}

		if _, err := chrono.Compile(f); err != nil {
			return err
		}
	}

	return nil
}
