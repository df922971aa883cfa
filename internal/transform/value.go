package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"cadnorm/internal/chrono"
	"cadnorm/internal/mapping"
	"cadnorm/internal/record"
	"cadnorm/internal/registry"
)

// ErrUnparseable is wrapped by every conversion failure.
var ErrUnparseable = errors.New("unparseable value")

// hemisphereRe accepts "40.7128 N", "W 74.0060" and "74.0060°W".
var hemisphereRe = regexp.MustCompile(`^([NSEWnsew])?\s*([-+]?\d+(?:\.\d+)?)\s*°?\s*([NSEWnsew])?$`)

// Convert normalizes one non-blank value according to tc.
func Convert(v record.Value, tc *mapping.TransformConfig) (record.Value, error) {
	if tc == nil {
		tc = mapping.DefaultTransform(registry.TypeText)
	}

	s := strings.TrimSpace(v.String())

	switch tc.Type {
	case registry.TypeDate:
		t, ok := chrono.ParseDate(s, tc.SourceFormat)
		if !ok {
			return v, fmt.Errorf("%w: date %q (format %s)", ErrUnparseable, s, formatName(tc.SourceFormat))
		}

		out, err := chrono.FormatDate(t, tc.TargetFormat)
		if err != nil {
			return v, err
		}

		return record.Text(out), nil

	case registry.TypeTime:
		c, ok := chrono.ParseTime(s, tc.SourceFormat)
		if !ok {
			return v, fmt.Errorf("%w: time %q (format %s)", ErrUnparseable, s, formatName(tc.SourceFormat))
		}

		out, err := chrono.FormatTime(c, tc.TargetFormat)
		if err != nil {
			return v, err
		}

		return record.Text(out), nil

	case registry.TypeDateTime:
		t, ok := chrono.ParseDateTime(s, tc.SourceFormat)
		if !ok {
			return v, fmt.Errorf("%w: datetime %q (format %s)", ErrUnparseable, s, formatName(tc.SourceFormat))
		}

		out, err := chrono.FormatDateTime(t, tc.TargetFormat)
		if err != nil {
			return v, err
		}

		return record.Text(out), nil

	case registry.TypeCoordinate:
		f, ok := parseCoordinate(v)
		if !ok {
			return v, fmt.Errorf("%w: coordinate %q", ErrUnparseable, s)
		}

		return record.Numeric(f), nil

	case registry.TypeNumber:
		f, ok := parseNumber(v)
		if !ok {
			return v, fmt.Errorf("%w: number %q", ErrUnparseable, s)
		}

		return record.Numeric(f), nil

	default:
		return record.Text(applyCase(v.String(), tc.TextCase)), nil
	}
}

func formatName(f string) string {
	if f == "" {
		return chrono.Auto
	}

	return f
}

// parseCoordinate reads a decimal degree, honoring a hemisphere letter.
func parseCoordinate(v record.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}

	m := hemisphereRe.FindStringSubmatch(strings.TrimSpace(v.String()))
	if m == nil || (m[1] != "" && m[3] != "") {
		return 0, false
	}

	f, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToUpper(m[1] + m[3]) {
	case "S", "W":
		if f > 0 {
			f = -f
		}
	}

	return f, true
}

// parseNumber accepts thousands separators.
func parseNumber(v record.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}

	return record.Text(strings.ReplaceAll(v.String(), ",", "")).Float()
}

// applyCase NFKC-normalizes s and applies the text case. Casers are built
// per call because they are not safe for concurrent use.
func applyCase(s string, c mapping.TextCase) string {
	s = norm.NFKC.String(s)

	switch c {
	case mapping.CaseUpper:
		return cases.Upper(language.Und).String(strings.TrimSpace(s))
	case mapping.CaseLower:
		return cases.Lower(language.Und).String(strings.TrimSpace(s))
	case mapping.CaseCapitalize:
		return cases.Title(language.Und).String(strings.TrimSpace(s))
	case mapping.CaseTrim:
		return strings.Join(strings.Fields(s), " ")
	default:
		return s
	}
}
