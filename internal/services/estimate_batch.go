package services

import (
	"context"
	"fmt"
	"sync"
	"truck-eta-service/internal/domain"
)

// DefaultConcurrency bounds concurrent route lookups in a batch.
const DefaultConcurrency = 5

// EstimateBatch estimates every trip and returns one result per request, in
// input order. A failing trip never affects the others. Trips not yet started
// when ctx is done fail with a route_unavailable result.
func (e *TripEstimator) EstimateBatch(ctx context.Context, reqs []domain.TripRequest) []domain.TripResult {
	results := make([]domain.TripResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req domain.TripRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = domain.Failed(req.Key, req.VehicleKey,
					domain.RouteUnavailable(fmt.Errorf("estimate batch: %w", ctx.Err())))
				return
			}
			defer func() { <-sem }()

			results[i] = e.EstimateTrip(ctx, req)
		}(i, req)
	}

	wg.Wait()
	return results
}
