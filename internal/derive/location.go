package derive

import (
	"fmt"
	"regexp"
	"strconv"

	"cadnorm/internal/diagnostic"
	"cadnorm/internal/record"
)

var (
	// pairRe finds "lat,lng" style pairs, optionally parenthesized.
	pairRe = regexp.MustCompile(`(?:^|[^\d.\-+])([-+]?\d{1,3}\.\d+)\s*[,;/ ]\s*([-+]?\d{1,3}\.\d+)`)
	// wktRe finds WKT points, which list longitude first.
	wktRe = regexp.MustCompile(`(?i)POINT\s*\(\s*([-+]?\d{1,3}(?:\.\d+)?)\s+([-+]?\d{1,3}(?:\.\d+)?)\s*\)`)
)

// coordinateSources are tried in order for a combined coordinate string.
var coordinateSources = []string{"location", "address"}

// splitCoordinates fills a missing latitude or longitude from a combined
// location string. Pairs outside geographic range are rejected.
func splitCoordinates(diags *diagnostic.Diagnostics, row int, rec record.StandardizedRecord) {
	if rec.Has("latitude") && rec.Has("longitude") {
		return
	}

	for _, id := range coordinateSources {
		if !rec.Has(id) {
			continue
		}

		raw := rec.Fields[id].String()

		lat, lng, ok := parsePair(raw)
		if !ok {
			continue
		}

		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			diags.AddRowWarning(CodeOutOfRange,
				fmt.Sprintf("%s holds %v,%v outside geographic range", id, lat, lng), row, "latitude", raw)

			continue
		}

		if !rec.Has("latitude") {
			rec.Set("latitude", record.Numeric(lat))
		}

		if !rec.Has("longitude") {
			rec.Set("longitude", record.Numeric(lng))
		}

		return
	}
}

func parsePair(s string) (lat, lng float64, ok bool) {
	if m := wktRe.FindStringSubmatch(s); m != nil {
		lng, err1 := strconv.ParseFloat(m[1], 64)
		lat, err2 := strconv.ParseFloat(m[2], 64)

		return lat, lng, err1 == nil && err2 == nil
	}

	m := pairRe.FindStringSubmatch(" " + s)
	if m == nil {
		return 0, 0, false
	}

	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)

	return lat, lng, err1 == nil && err2 == nil
}
