package cache

import (
	"encoding/json"
	"fmt"
	"truck-eta-service/internal/domain"
)

// storedRoute is the cached JSON form of a route geometry.
type storedRoute struct {
	Points          [][2]float64 `json:"points"`
	DurationSeconds float64      `json:"duration_seconds"`
	DistanceMeters  float64      `json:"distance_meters"`
	HasTotals       bool         `json:"has_totals"`
}

func encodeRoute(r domain.RouteGeometry) ([]byte, error) {
	s := storedRoute{
		Points:          make([][2]float64, len(r.Points)),
		DurationSeconds: r.DurationSeconds,
		DistanceMeters:  r.DistanceMeters,
		HasTotals:       r.HasTotals,
	}
	for i, p := range r.Points {
		s.Points[i] = [2]float64{p.Lon, p.Lat}
	}

	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeRoute(b []byte) (domain.RouteGeometry, error) {
	var s storedRoute
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("decode route: %w", err)
	}

	r := domain.RouteGeometry{
		Points:          make([]domain.Coordinate, len(s.Points)),
		DurationSeconds: s.DurationSeconds,
		DistanceMeters:  s.DistanceMeters,
		HasTotals:       s.HasTotals,
	}
	for i, p := range s.Points {
		r.Points[i] = domain.Coordinate{Lat: p[1], Lon: p[0]}
	}
	return r, nil
}
