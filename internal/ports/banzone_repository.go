package ports

import (
	"context"
	"truck-eta-service/internal/domain"
)

// Port: a boundary for loading the ban zone catalog from storage.
type BanZoneRepository interface {
	// Retrieve all zones in stable match order.
	ListBanZones(ctx context.Context) ([]domain.BanZone, error)
}
