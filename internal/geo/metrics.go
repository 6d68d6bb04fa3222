package geo

import "math"

// CumDistances returns the cumulative along-path distance in meters at each point.
func CumDistances(points []Coordinate) []float64 {
	n := len(points)
	if n == 0 {
		return nil
	}
	cum := make([]float64, n)
	sum := 0.0
	for i := 1; i < n; i++ {
		sum += Distance(points[i-1], points[i])
		cum[i] = sum
	}
	return cum
}

// TotalDistanceKm sums great-circle distances between consecutive points, in km.
func TotalDistanceKm(points []Coordinate) float64 {
	if len(points) < 2 {
		return 0
	}
	meters := 0.0
	for i := 1; i < len(points); i++ {
		meters += Distance(points[i-1], points[i])
	}
	return meters / 1000
}

// NearestIndex scans points for the one closest to target. Ties resolve to
// the lowest index. Returns -1 for an empty slice.
func NearestIndex(points []Coordinate, target Coordinate) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range points {
		if d := Distance(c, target); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// DistanceToClosestKm returns the distance along points, in km, from the
// first point to the point nearest to target.
func DistanceToClosestKm(points []Coordinate, target Coordinate) float64 {
	idx := NearestIndex(points, target)
	if idx < 1 {
		return 0
	}
	return TotalDistanceKm(points[:idx+1])
}
