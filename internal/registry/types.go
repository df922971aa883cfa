// Package registry holds the canonical field table and the tool profiles
// that downstream analytic tools validate against. A Registry is built once
// at startup and never mutated afterwards.
package registry

import (
	"regexp"

	"cadnorm/internal/common"
)

// SemanticType is the normalized value type of a canonical field.
type SemanticType string

const (
	TypeDate       SemanticType = "date"
	TypeTime       SemanticType = "time"
	TypeDateTime   SemanticType = "datetime"
	TypeCoordinate SemanticType = "coordinate"
	TypeNumber     SemanticType = "number"
	TypeText       SemanticType = "text"
)

// IsValid returns true if t is a known semantic type.
func (t SemanticType) IsValid() bool {
	switch t {
	case TypeDate, TypeTime, TypeDateTime, TypeCoordinate, TypeNumber, TypeText:
		return true
	default:
		return false
	}
}

// Category groups canonical fields by subject.
type Category string

const (
	CategoryTimestamp  Category = "timestamp"
	CategoryLocation   Category = "location"
	CategoryIncident   Category = "incident"
	CategoryNFIRS      Category = "nfirs"
	CategoryPatient    Category = "patient"
	CategoryCalculated Category = "calculated"
	CategoryOther      Category = "other"
)

// IsValid returns true if c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTimestamp, CategoryLocation, CategoryIncident, CategoryNFIRS,
		CategoryPatient, CategoryCalculated, CategoryOther:
		return true
	default:
		return false
	}
}

// CanonicalField is one entry of the target schema.
type CanonicalField struct {
	ID          string
	DisplayName string
	Type        SemanticType
	Category    Category
	Aliases     []string
	// Pattern optionally constrains normalized values.
	Pattern *regexp.Regexp
	Example string
}

// Names returns the display name, id and aliases, in that order.
func (f *CanonicalField) Names() []string {
	names := make([]string, 0, len(f.Aliases)+2)
	names = append(names, f.DisplayName, f.ID)
	names = append(names, f.Aliases...)

	return common.Dedupe(names)
}

// ToolProfile lists the canonical fields a downstream tool consumes.
type ToolProfile struct {
	ID               string   `json:"id" yaml:"id"`
	Description      string   `json:"description" yaml:"description"`
	RequiredFields   []string `json:"requiredFields" yaml:"requiredFields"`
	DateFields       []string `json:"dateFields,omitempty" yaml:"dateFields,omitempty"`
	TimeFields       []string `json:"timeFields,omitempty" yaml:"timeFields,omitempty"`
	CoordinateFields []string `json:"coordinateFields,omitempty" yaml:"coordinateFields,omitempty"`
	OptionalFields   []string `json:"optionalFields,omitempty" yaml:"optionalFields,omitempty"`
}

// Targets returns every field id the profile references, required first,
// without duplicates.
func (p *ToolProfile) Targets() []string {
	var all []string

	all = append(all, p.RequiredFields...)
	all = append(all, p.DateFields...)
	all = append(all, p.TimeFields...)
	all = append(all, p.CoordinateFields...)
	all = append(all, p.OptionalFields...)

	return common.Dedupe(all)
}
