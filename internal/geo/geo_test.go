package geo

import (
	"math"
	"testing"
	"truck-eta-service/internal/domain"
)

func TestDistance(t *testing.T) {
	a := domain.Coordinate{Lat: 24.0, Lon: 46.0}
	b := domain.Coordinate{Lat: 24.5, Lon: 46.5}

	d := Distance(a, b)
	if d < 74 || d > 77 {
		t.Fatalf("distance = %.3f km, want ~75.2", d)
	}

	if back := Distance(b, a); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance not symmetric: %.9f vs %.9f", d, back)
	}

	if z := Distance(a, a); z != 0 {
		t.Fatalf("distance to self = %v, want 0", z)
	}

	// One degree of latitude along a meridian.
	oneDeg := Distance(domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 1, Lon: 0})
	want := EarthRadiusKm * math.Pi / 180
	if math.Abs(oneDeg-want) > 1e-6 {
		t.Fatalf("one degree = %.6f, want %.6f", oneDeg, want)
	}
}

func TestInterpolate(t *testing.T) {
	a := domain.Coordinate{Lat: 10, Lon: 20}
	b := domain.Coordinate{Lat: 12, Lon: 24}

	if got := Interpolate(a, b, 0); got != a {
		t.Fatalf("fraction 0 = %v, want %v", got, a)
	}
	if got := Interpolate(a, b, 1); got != b {
		t.Fatalf("fraction 1 = %v, want %v", got, b)
	}
	mid := Interpolate(a, b, 0.5)
	if mid.Lat != 11 || mid.Lon != 22 {
		t.Fatalf("fraction 0.5 = %v, want 11,22", mid)
	}
}

func TestContains(t *testing.T) {
	square := []domain.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
		{Lat: 1, Lon: 0},
	}

	if !Contains(square, domain.Coordinate{Lat: 0.5, Lon: 0.5}) {
		t.Fatalf("center should be inside")
	}
	if Contains(square, domain.Coordinate{Lat: 1.5, Lon: 0.5}) {
		t.Fatalf("point north of square should be outside")
	}
	if Contains(square[:2], domain.Coordinate{Lat: 0, Lon: 0.5}) {
		t.Fatalf("degenerate polygon must not contain anything")
	}

	// Closed ring (first vertex repeated) behaves the same.
	closed := append(append([]domain.Coordinate{}, square...), square[0])
	if !Contains(closed, domain.Coordinate{Lat: 0.25, Lon: 0.75}) {
		t.Fatalf("closed ring should contain interior point")
	}
}
