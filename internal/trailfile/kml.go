package trailfile

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"trail-simulator/internal/geo"
)

// DefaultTrailName is used when a document carries no name of its own.
const DefaultTrailName = "Cami de Sant Jaume"

// ErrParseFailure is returned when no trail can be extracted from a document.
var ErrParseFailure = errors.New("trail parse failure")

var (
	placemarkRe   = regexp.MustCompile(`(?s)<Placemark\b[^>]*>(.*)`)
	nameRe        = regexp.MustCompile(`(?s)<name>(.*?)</name>`)
	coordinatesRe = regexp.MustCompile(`(?s)<coordinates>(.*?)</coordinates>`)
)

// ParseKML extracts the first placemark-like trail from a KML document.
// Coordinates are stored as lon,lat[,alt] tuples and come back as lat/lon.
// Tuples that do not carry two numbers are skipped.
func ParseKML(document, defaultName string) (geo.GeoPath, error) {
	m := coordinatesRe.FindStringSubmatch(document)
	if m == nil {
		return geo.GeoPath{}, fmt.Errorf("kml: no coordinates element: %w", ErrParseFailure)
	}
	points := parseCoordinateList(m[1])
	if len(points) == 0 {
		return geo.GeoPath{}, fmt.Errorf("kml: coordinates element holds no valid tuples: %w", ErrParseFailure)
	}
	name := extractName(document)
	if name == "" {
		name = defaultName
	}
	return geo.NewPath(name, points), nil
}

// extractName prefers the name of the first Placemark and falls back to the
// first name element anywhere in the document.
func extractName(document string) string {
	scope := document
	if pm := placemarkRe.FindStringSubmatch(document); pm != nil && nameRe.MatchString(pm[1]) {
		scope = pm[1]
	}
	m := nameRe.FindStringSubmatch(scope)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseCoordinateList(body string) []geo.Coordinate {
	var out []geo.Coordinate
	for _, tok := range strings.Fields(body) {
		c, ok := parseTuple(tok)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseTuple(tok string) (geo.Coordinate, bool) {
	fields := strings.Split(tok, ",")
	if len(fields) < 2 {
		return geo.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Lat: lat, Lon: lon}
	if math.IsNaN(lat) || math.IsNaN(lon) || !c.Valid() {
		return geo.Coordinate{}, false
	}
	return c, true
}
