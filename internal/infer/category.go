package infer

import (
	"cadnorm/internal/match"
	"cadnorm/internal/registry"
)

// categoryKeywords match token prefixes, or whole tokens for short words
// that would otherwise over-match ("age" in "agency").
var categoryKeywords = []struct {
	category registry.Category
	prefixes []string
	tokens   []string
}{
	{registry.CategoryNFIRS, []string{"nfirs"}, nil},
	{registry.CategoryPatient, []string{"patient", "gender", "complaint"}, []string{"pt", "age", "sex"}},
	{registry.CategoryCalculated, []string{"minutes", "duration", "elapsed", "interval"}, nil},
	{registry.CategoryLocation, []string{"addr", "street", "city", "zip", "county", "district", "zone", "coord", "geo", "gps"}, []string{"beat"}},
	{registry.CategoryIncident, []string{"incident", "call", "event", "unit", "station", "nature", "priority", "disposition", "apparatus"}, nil},
}

// InferCategory returns the category of a column. A registry hit wins;
// otherwise the inferred type and name keywords decide.
func (in *Inferencer) InferCategory(name string, t registry.SemanticType) registry.Category {
	if in.reg != nil {
		if f, ok := in.reg.LookupByName(name); ok {
			return f.Category
		}
	}

	switch t {
	case registry.TypeDate, registry.TypeTime, registry.TypeDateTime:
		return registry.CategoryTimestamp
	case registry.TypeCoordinate:
		return registry.CategoryLocation
	}

	for _, ck := range categoryKeywords {
		if match.HasTokenPrefix(name, ck.prefixes...) || match.HasToken(name, ck.tokens...) {
			return ck.category
		}
	}

	return registry.CategoryOther
}
