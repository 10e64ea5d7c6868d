package routing

import (
	"context"
	"fmt"
	"sync"
	"truck-eta-service/internal/domain"
)

// MockRoute is a canned route between two endpoints.
type MockRoute struct {
	From, To domain.Coordinate
	Route    domain.RouteGeometry
	Err      error
}

// MockRouteProvider serves canned routes. Unknown pairs return a
// straight two-point route when Straight is set, otherwise an error.
type MockRouteProvider struct {
	Straight bool

	mu    sync.Mutex
	m     map[string]MockRoute
	calls int
}

func NewMockRouteProvider(routes []MockRoute) *MockRouteProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[CacheKey(r.From, r.To)] = r
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) GetRoute(ctx context.Context, origin, destination domain.Coordinate) (domain.RouteGeometry, error) {
	if err := ctx.Err(); err != nil {
		return domain.RouteGeometry{}, err
	}

	p.mu.Lock()
	p.calls++
	r, ok := p.m[CacheKey(origin, destination)]
	p.mu.Unlock()

	if ok {
		if r.Err != nil {
			return domain.RouteGeometry{}, r.Err
		}
		return r.Route, nil
	}
	if p.Straight {
		return domain.RouteGeometry{Points: []domain.Coordinate{origin, destination}}, nil
	}
	return domain.RouteGeometry{}, fmt.Errorf("missing route %s -> %s", origin, destination)
}

// Calls returns how many routes were requested.
func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
