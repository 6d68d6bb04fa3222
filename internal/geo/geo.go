package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies inside the lat/lon domain.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Point returns the coordinate as an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b Coordinate) float64 {
	return orbgeo.DistanceHaversine(a.Point(), b.Point())
}

// Bearing returns the initial great-circle course from a to b in degrees,
// clockwise from north, in [0, 360).
func Bearing(from, to Coordinate) float64 {
	brng := orbgeo.Bearing(from.Point(), to.Point())
	if math.IsNaN(brng) {
		return 0
	}
	return math.Mod(brng+360, 360)
}

// Interpolate blends lat/lon linearly by t, which is clamped to [0,1].
func Interpolate(from, to Coordinate, t float64) Coordinate {
	t = Clamp(t, 0, 1)
	return Coordinate{
		Lat: from.Lat + (to.Lat-from.Lat)*t,
		Lon: from.Lon + (to.Lon-from.Lon)*t,
	}
}

// Ease is the cosine ease-in-out curve 0.5 - 0.5*cos(t*pi).
// Positions are not blended with it; see Interpolate.
func Ease(t float64) float64 {
	return 0.5 - 0.5*math.Cos(t*math.Pi)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
