package ports

import (
	"context"
	"truck-eta-service/internal/domain"
)

// Persistent cache for provider routes keyed by an origin/destination pair.
type RouteCache interface {
	// Return the cached route and whether it was present.
	Get(ctx context.Context, key string) (domain.RouteGeometry, bool, error)
	// Store a route under key.
	Put(ctx context.Context, key string, route domain.RouteGeometry) error
}
