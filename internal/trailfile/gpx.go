package trailfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"

	"trail-simulator/internal/geo"
)

// ParseGPX reads the first track (all of its segments, in order) from a GPX
// document. Documents without tracks fall back to their first route.
func ParseGPX(data []byte, defaultName string) (geo.GeoPath, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return geo.GeoPath{}, fmt.Errorf("gpx: %v: %w", err, ErrParseFailure)
	}

	var (
		name   string
		points []geo.Coordinate
	)
	switch {
	case len(doc.Tracks) > 0:
		trk := doc.Tracks[0]
		name = trk.Name
		for _, seg := range trk.Segments {
			points = appendGPXPoints(points, seg.Points)
		}
	case len(doc.Routes) > 0:
		rte := doc.Routes[0]
		name = rte.Name
		points = appendGPXPoints(points, rte.Points)
	}
	if len(points) == 0 {
		return geo.GeoPath{}, fmt.Errorf("gpx: no track or route points: %w", ErrParseFailure)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(doc.Name)
	}
	if name == "" {
		name = defaultName
	}
	return geo.NewPath(name, points), nil
}

func appendGPXPoints(dst []geo.Coordinate, pts []gpx.GPXPoint) []geo.Coordinate {
	for _, p := range pts {
		c := geo.Coordinate{Lat: p.Latitude, Lon: p.Longitude}
		if !c.Valid() {
			continue
		}
		dst = append(dst, c)
	}
	return dst
}

// Load reads a trail document from disk, choosing the format by extension.
func Load(path, defaultName string) (geo.GeoPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geo.GeoPath{}, fmt.Errorf("read %s: %v: %w", path, err, ErrParseFailure)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return ParseGPX(data, defaultName)
	default:
		return ParseKML(string(data), defaultName)
	}
}
