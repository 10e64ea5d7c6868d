package ports

import (
	"context"
	"truck-eta-service/internal/domain"
)

// Contract for retrieving the driving path between two coordinates.
type RouteProvider interface {
	// Return the ordered path from origin to destination, with provider
	// duration/distance totals when available.
	GetRoute(ctx context.Context, origin, destination domain.Coordinate) (domain.RouteGeometry, error)
}
