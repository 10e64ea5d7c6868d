package banzone

import (
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/geo"
)

// Circle is a radius-based ban area.
type Circle struct {
	Center   domain.Coordinate
	RadiusKm float64
}

func (c Circle) Contains(p domain.Coordinate) bool {
	return geo.Distance(p, c.Center) <= c.RadiusKm
}

func (c Circle) Valid() bool { return c.RadiusKm > 0 }

// Polygon is a closed boundary; the closing vertex may be omitted.
type Polygon struct {
	Vertices []domain.Coordinate
}

func (p Polygon) Contains(pt domain.Coordinate) bool {
	return geo.Contains(p.Vertices, pt)
}

func (p Polygon) Valid() bool {
	n := len(p.Vertices)
	if n > 0 && p.Vertices[0] == p.Vertices[n-1] {
		n--
	}
	return n >= 3
}
