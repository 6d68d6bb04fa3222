package geo

// GeoPath is a named, ordered and read-only sequence of coordinates.
// Point order defines the direction of travel.
type GeoPath struct {
	Name   string
	points []Coordinate
}

// NewPath copies points into a new GeoPath.
func NewPath(name string, points []Coordinate) GeoPath {
	cp := make([]Coordinate, len(points))
	copy(cp, points)
	return GeoPath{Name: name, points: cp}
}

// Len returns the number of points.
func (p GeoPath) Len() int { return len(p.points) }

// Empty reports whether the path has no points.
func (p GeoPath) Empty() bool { return len(p.points) == 0 }

// At returns the i-th point.
func (p GeoPath) At(i int) Coordinate { return p.points[i] }

// Points returns a copy of the path's coordinates.
func (p GeoPath) Points() []Coordinate {
	cp := make([]Coordinate, len(p.points))
	copy(cp, p.points)
	return cp
}

// First returns the first point; ok is false for an empty path.
func (p GeoPath) First() (Coordinate, bool) {
	if len(p.points) == 0 {
		return Coordinate{}, false
	}
	return p.points[0], true
}

// Last returns the final point; ok is false for an empty path.
func (p GeoPath) Last() (Coordinate, bool) {
	if len(p.points) == 0 {
		return Coordinate{}, false
	}
	return p.points[len(p.points)-1], true
}

// Suffix returns a copy of the points from index i to the end.
// Out of range indexes are clamped.
func (p GeoPath) Suffix(i int) []Coordinate {
	if i < 0 {
		i = 0
	}
	if i > len(p.points) {
		i = len(p.points)
	}
	cp := make([]Coordinate, len(p.points)-i)
	copy(cp, p.points[i:])
	return cp
}

// TotalDistanceKm is the along-path length of the whole trail.
func (p GeoPath) TotalDistanceKm() float64 { return TotalDistanceKm(p.points) }

// NearestIndex returns the index of the point closest to target, or -1.
func (p GeoPath) NearestIndex(target Coordinate) int { return NearestIndex(p.points, target) }
