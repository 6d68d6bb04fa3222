package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerKind tags what a map marker stands for.
type MarkerKind int

const (
	MarkerStart MarkerKind = iota
	MarkerEnd
	MarkerTrailDot
	MarkerLive
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerStart:
		return "start"
	case MarkerEnd:
		return "end"
	case MarkerTrailDot:
		return "trail_dot"
	case MarkerLive:
		return "live"
	default:
		return "unknown"
	}
}

// Style is the visual treatment a host picks for a marker kind.
type Style struct {
	Color    string
	Size     int
	Priority string
	Callout  bool
}

// StyleFor resolves a marker kind to its style.
func StyleFor(k MarkerKind) Style {
	switch k {
	case MarkerStart:
		return Style{Color: "green", Size: 32, Priority: "required", Callout: true}
	case MarkerEnd:
		return Style{Color: "red", Size: 32, Priority: "required", Callout: true}
	case MarkerTrailDot:
		return Style{Color: "white", Size: 6, Priority: "low"}
	case MarkerLive:
		return Style{Color: "blue", Size: 24, Priority: "required"}
	default:
		return Style{}
	}
}

// Marker is a point of interest derived from a path.
type Marker struct {
	Kind       MarkerKind
	Coordinate Coordinate
}

// Markers returns start and end markers plus a trail dot for every interior
// point. Interior dots are only produced for paths longer than two points.
func Markers(p GeoPath) []Marker {
	if p.Empty() {
		return nil
	}
	first, _ := p.First()
	last, _ := p.Last()
	out := []Marker{{Kind: MarkerStart, Coordinate: first}, {Kind: MarkerEnd, Coordinate: last}}
	if p.Len() > 2 {
		for i := 1; i < p.Len()-1; i++ {
			out = append(out, Marker{Kind: MarkerTrailDot, Coordinate: p.At(i)})
		}
	}
	return out
}

// LineString converts coordinates to an orb line string.
func LineString(points []Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, c := range points {
		ls = append(ls, c.Point())
	}
	return ls
}

// FeatureCollection renders the trail, its markers and an optional travel
// trace as GeoJSON features.
func FeatureCollection(p GeoPath, trace []Coordinate) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	trail := geojson.NewFeature(LineString(p.points))
	trail.Properties["name"] = p.Name
	trail.Properties["kind"] = "trail"
	trail.Properties["distance_km"] = p.TotalDistanceKm()
	fc.Append(trail)

	for _, m := range Markers(p) {
		f := geojson.NewFeature(m.Coordinate.Point())
		f.Properties["kind"] = m.Kind.String()
		f.Properties["color"] = StyleFor(m.Kind).Color
		fc.Append(f)
	}

	if len(trace) > 0 {
		tf := geojson.NewFeature(LineString(trace))
		tf.Properties["kind"] = "trace"
		tf.Properties["distance_km"] = TotalDistanceKm(trace)
		fc.Append(tf)
	}
	return fc
}
