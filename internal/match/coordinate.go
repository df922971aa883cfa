package match

import "slices"

var (
	latitudeTokens  = []string{"lat", "latitude"}
	longitudeTokens = []string{"lon", "lng", "longitude"}

	latitudeJoined = map[string]bool{
		"gpslat": true, "geolat": true, "latdd": true, "latitudedd": true, "incidentlatitude": true,
	}
	longitudeJoined = map[string]bool{
		"gpslon": true, "gpslong": true, "gpslng": true, "geolon": true, "geolong": true,
		"londd": true, "longdd": true, "longitudedd": true, "incidentlongitude": true,
	}

	// coordinateQualifiers may stand beside "long" in a longitude name.
	coordinateQualifiers = map[string]bool{
		"gps": true, "geo": true, "dd": true, "deg": true, "degrees": true, "decimal": true,
		"coord": true, "coordinate": true, "coordinates": true, "incident": true, "value": true,
		"pos": true, "position": true, "wgs": true, "84": true, "lat": true, "latitude": true,
		"x": true, "y": true,
	}
)

// IsLatitudeName reports whether name labels a latitude column: a whole
// "lat" or "latitude" token ("GPS_LAT", "LatDecimal") or a joined form
// ("gpslat"). "Latest Status" is not one.
func IsLatitudeName(name string) bool {
	return HasToken(name, latitudeTokens...) || latitudeJoined[NormalizeIdent(name)]
}

// IsLongitudeName reports whether name labels a longitude column. "long"
// is an ordinary word, so it only counts when every other token is a
// coordinate qualifier: "LONG_DD" and "Lat/Long" do, "Long Description"
// does not.
func IsLongitudeName(name string) bool {
	if HasToken(name, longitudeTokens...) || longitudeJoined[NormalizeIdent(name)] {
		return true
	}

	tokens := TokenizeIdent(name)
	if !slices.Contains(tokens, "long") {
		return false
	}

	for _, tok := range tokens {
		if tok != "long" && !coordinateQualifiers[tok] {
			return false
		}
	}

	return true
}
