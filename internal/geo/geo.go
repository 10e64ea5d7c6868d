package geo

import (
	"math"
	"truck-eta-service/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b domain.Coordinate) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Interpolate moves fraction f of the way from a to b on the (lon, lat) plane.
// Good enough below ~100 km; it does not follow the great circle.
func Interpolate(a, b domain.Coordinate, f float64) domain.Coordinate {
	return domain.Coordinate{
		Lon: a.Lon + (b.Lon-a.Lon)*f,
		Lat: a.Lat + (b.Lat-a.Lat)*f,
	}
}

// Contains reports whether p lies inside the polygon using even-odd ray casting
// on (lon, lat). Points exactly on an edge may fall either way.
func Contains(vertices []domain.Coordinate, p domain.Coordinate) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) {
			crossLon := (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lon
			if p.Lon < crossLon {
				inside = !inside
			}
		}
	}
	return inside
}
