// Package geo extracts latitude/longitude pairs from free-text map links.
package geo

import (
	"regexp"
	"strconv"
)

// Recognized link fragments, tried in order. The "@lat,lng" form appears in
// shared map URLs, the "q=lat,lng" form in search-style links.
var (
	atPattern    = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
	queryPattern = regexp.MustCompile(`[?&]q=(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
)

// FromMapURL parses a map-link string into a latitude/longitude pair.
// Absence of coordinates is a normal outcome, reported via ok=false, and is
// never an error. Callers that already have coordinates should not consult
// this function; directly supplied values take precedence.
func FromMapURL(raw string) (lat, lng float64, ok bool) {
	for _, pattern := range []*regexp.Regexp{atPattern, queryPattern} {
		match := pattern.FindStringSubmatch(raw)
		if match == nil {
			continue
		}

		lat, errLat := strconv.ParseFloat(match[1], 64)
		lng, errLng := strconv.ParseFloat(match[2], 64)
		if errLat != nil || errLng != nil {
			continue
		}

		return lat, lng, true
	}

	return 0, 0, false
}
