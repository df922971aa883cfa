// Package infer classifies columns into semantic types and categories from
// their names and, when available, a sample value.
//
// Name evidence always outranks value evidence: a column literally named
// "Latitude" is a coordinate whatever its sample looks like.
package infer

import (
	"regexp"
	"strconv"
	"strings"

	"cadnorm/internal/match"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

// Evidence names what decided an inference.
type Evidence string

const (
	EvidenceRegistry Evidence = "registry"
	EvidenceKeyword  Evidence = "keyword"
	EvidenceSample   Evidence = "sample"
	EvidenceDefault  Evidence = "default"
)

// Inference is the detailed result of InferType.
type Inference struct {
	Type     registry.SemanticType
	Evidence Evidence
	// CoordinateHint is set when a numeric sample lies in a geographic range.
	// It never decides the type on its own.
	CoordinateHint bool
}

var (
	samplePatternsDate = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),     // YYYY-MM-DD
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),     // MM/DD/YYYY
		regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),     // DD-MM-YYYY
		regexp.MustCompile(`^(19|20)\d{2}[01]\d[0-3]\d$`), // YYYYMMDD
	}
	samplePatternsTime = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?(\s*[AaPp][Mm])?$`),
		regexp.MustCompile(`^([01]\d|2[0-3])[0-5]\d$`),
	}
	decimalPattern = regexp.MustCompile(`^-?\d{1,3}\.\d+$`)

	numberKeywords = []string{"count", "number", "total", "priority"}
)

// Inferencer infers semantic types using the registry for name hints.
type Inferencer struct {
	reg *registry.Registry
}

// New returns an Inferencer. A nil registry disables registry hints.
func New(reg *registry.Registry) *Inferencer {
	return &Inferencer{reg: reg}
}

// InferType returns the semantic type of a column.
func (in *Inferencer) InferType(name string, sample record.Value) registry.SemanticType {
	return in.Infer(name, sample).Type
}

// Infer returns the semantic type of a column along with its evidence.
func (in *Inferencer) Infer(name string, sample record.Value) Inference {
	if t, ev, ok := in.fromName(name); ok {
		return Inference{Type: t, Evidence: ev}
	}

	if !sample.IsBlank() {
		return fromSample(sample)
	}

	return Inference{Type: registry.TypeText, Evidence: EvidenceDefault}
}

func (in *Inferencer) fromName(name string) (registry.SemanticType, Evidence, bool) {
	if in.reg != nil {
		if f, ok := in.reg.LookupByName(name); ok {
			return f.Type, EvidenceRegistry, true
		}
	}

	if t, ok := keywordType(name); ok {
		return t, EvidenceKeyword, true
	}

	return "", "", false
}

// keywordType applies the name keyword rules in priority order.
func keywordType(name string) (registry.SemanticType, bool) {
	if match.IsLatitudeName(name) || match.IsLongitudeName(name) {
		return registry.TypeCoordinate, true
	}

	joined := match.NormalizeIdent(name)
	hasDate := strings.Contains(joined, "date")
	hasTime := strings.Contains(joined, "time")

	switch {
	case strings.Contains(joined, "timestamp"), hasDate && hasTime:
		return registry.TypeDateTime, true
	case hasDate:
		return registry.TypeDate, true
	case hasTime:
		return registry.TypeTime, true
	}

	for _, tok := range match.TokenizeIdent(name) {
		for _, kw := range numberKeywords {
			if tok == kw {
				return registry.TypeNumber, true
			}
		}
	}

	return "", false
}

func fromSample(sample record.Value) Inference {
	if sample.Kind() == record.KindNumeric {
		f, _ := sample.Float()
		return Inference{Type: registry.TypeNumber, Evidence: EvidenceSample, CoordinateHint: inGeoRange(f, sample.String())}
	}

	s := strings.TrimSpace(sample.String())

	// Compact dates and 4-digit military times parse as numbers too; their
	// own patterns take them below.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !looksLikeCompactDate(s) && !looksLikeMilitary(s) {
		return Inference{Type: registry.TypeNumber, Evidence: EvidenceSample, CoordinateHint: inGeoRange(f, s)}
	}

	for _, p := range samplePatternsDate {
		if p.MatchString(s) {
			return Inference{Type: registry.TypeDate, Evidence: EvidenceSample}
		}
	}

	for _, p := range samplePatternsTime {
		if p.MatchString(s) {
			return Inference{Type: registry.TypeTime, Evidence: EvidenceSample}
		}
	}

	return Inference{Type: registry.TypeText, Evidence: EvidenceDefault}
}

func looksLikeCompactDate(s string) bool {
	return samplePatternsDate[3].MatchString(s)
}

func looksLikeMilitary(s string) bool {
	return len(s) == 4 && samplePatternsTime[1].MatchString(s)
}

// inGeoRange reports a decimal value inside [-180, 180]. Integers are not
// considered coordinates.
func inGeoRange(f float64, raw string) bool {
	if !decimalPattern.MatchString(strings.TrimSpace(raw)) {
		return false
	}

	return f >= -180 && f <= 180
}
