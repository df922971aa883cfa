package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdent normalizes a column or field name for matching.
// The normalization pipeline:
// 1. NFKC-fold compatibility characters (full-width letters, ligatures).
// 2. Tokenize on separators and CamelCase boundaries.
// 3. Case-fold to lower and join without separators.
//
// "Incident Date", "INCIDENT_DATE" and "incidentDate" all normalize to
// "incidentdate".
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeIdentWithSuffixStrip normalizes and strips one trailing noise
// token commonly appended by CAD exports.
// Note: short suffixes like "no" are kept since they carry meaning ("Call No").
func NormalizeIdentWithSuffixStrip(s string) string {
	normalized := NormalizeIdent(s)

	// Ordered from longer to shorter to avoid partial matches
	suffixes := []string{"timestamp", "dttm", "code", "num", "cd", "id"}
	for _, suffix := range suffixes {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)

			break
		}
	}

	return normalized
}

// TokenizeIdent splits a name into normalized lowercase tokens.
// Examples:
//   - "CALL_RECEIVED_DATE" -> ["call", "received", "date"]
//   - "GPSLat" -> ["gps", "lat"]
//   - "Lat/Long" -> ["lat", "long"]
//   - "Response Time (min)" -> ["response", "time", "min"]
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(norm.NFKC.String(s))
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// tokenizeCamelCase splits a CamelCase or separated string into tokens.
// Examples:
//   - "IncidentID" -> ["Incident", "ID"]
//   - "onSceneTime" -> ["on", "Scene", "Time"]
//   - "XCoord" -> ["X", "Coord"]
//   - "NUM_1" -> ["NUM", "1"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		// Handle separators - start a new token
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if current.Len() > 0 && shouldStartNewToken(runes, i) {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator reports whether r splits tokens. Anything that is not a
// letter or digit separates ("_", "-", " ", "/", "#", parentheses).
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// Letter/digit boundary: "NUM1" -> "NUM", "1"
	if unicode.IsDigit(r) != unicode.IsDigit(prevRune) {
		return true
	}

	// Transition from lowercase to uppercase: "onScene" -> split before 'S'
	if isUpper && unicode.IsLower(prevRune) {
		return true
	}

	// End of acronym: "GPSLat" -> "GPS" + "Lat", split before 'L'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}

// HasTokenPrefix reports whether any token of name starts with one of the
// prefixes.
func HasTokenPrefix(name string, prefixes ...string) bool {
	for _, tok := range TokenizeIdent(name) {
		for _, p := range prefixes {
			if strings.HasPrefix(tok, p) {
				return true
			}
		}
	}

	return false
}

// HasToken reports whether name has a token equal to one of want.
func HasToken(name string, want ...string) bool {
	for _, tok := range TokenizeIdent(name) {
		for _, w := range want {
			if tok == w {
				return true
			}
		}
	}

	return false
}
