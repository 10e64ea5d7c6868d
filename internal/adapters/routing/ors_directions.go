package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"truck-eta-service/internal/domain"
)

// Search radius in metres for snapping endpoints to the road network.
const snapRadiusMeters = 1000

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Radiuses    []int       `json:"radiuses"`
}

type directionsSummary struct {
	Distance *float64 `json:"distance"`
	Duration *float64 `json:"duration"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Segments []directionsSummary `json:"segments"`
			Summary  directionsSummary   `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// fetchDirections requests a GeoJSON route for a single origin/destination pair.
func (o *ORSRouteProvider) fetchDirections(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
) (domain.RouteGeometry, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Radiuses:    []int{snapRadiusMeters, snapRadiusMeters},
	})
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("decode directions response: %w", err)
	}

	return parseDirections(dr)
}

func parseDirections(dr directionsResponse) (domain.RouteGeometry, error) {
	if len(dr.Features) == 0 {
		return domain.RouteGeometry{}, errors.New("directions response has no features")
	}
	f := dr.Features[0]

	points := make([]domain.Coordinate, 0, len(f.Geometry.Coordinates))
	for i, c := range f.Geometry.Coordinates {
		if len(c) < 2 {
			return domain.RouteGeometry{}, fmt.Errorf("directions coordinate %d has %d values", i, len(c))
		}
		// GeoJSON positions are [lon, lat(, elevation)].
		points = append(points, domain.Coordinate{Lat: c[1], Lon: c[0]})
	}
	if len(points) < 2 {
		return domain.RouteGeometry{}, fmt.Errorf("directions geometry has %d points", len(points))
	}

	route := domain.RouteGeometry{Points: points}

	// Prefer the first segment's totals and fall back to the route summary.
	totals := f.Properties.Summary
	if len(f.Properties.Segments) > 0 && f.Properties.Segments[0].Duration != nil && f.Properties.Segments[0].Distance != nil {
		totals = f.Properties.Segments[0]
	}
	if totals.Duration != nil && totals.Distance != nil {
		route.DurationSeconds = *totals.Duration
		route.DistanceMeters = *totals.Distance
		route.HasTotals = true
	}

	return route, nil
}
