package ports

import (
	"context"
	"truck-eta-service/internal/domain"
)

// Optional sink notified with every finished trip estimate.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result domain.TripResult) error
}
