package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/platform/obs"
)

// Postgres-backed implementation of the BanZoneRepository port.
type PostgresBanZoneRepository struct {
	DB              *sql.DB
	DefaultRadiusKm float64
}

func NewPostgresBanZoneRepository(db *sql.DB, defaultRadiusKm float64) *PostgresBanZoneRepository {
	return &PostgresBanZoneRepository{DB: db, DefaultRadiusKm: defaultRadiusKm}
}

// ListRecords returns the stored rows in id order.
func (r *PostgresBanZoneRepository) ListRecords(ctx context.Context) ([]banzone.Record, error) {
	if r.DB == nil {
		return nil, errors.New("postgres ban zone repository: DB is nil")
	}

	query := `
	SELECT
		city,
		day_of_week,
		time_start,
		time_end,
		lat,
		lon,
		radius_km,
		polygon
	FROM ban_zones
	ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ban zones: query ban_zones table: %w", err)
	}
	defer rows.Close()

	records := make([]banzone.Record, 0, 64)
	for rows.Next() {
		var (
			rec              banzone.Record
			lat, lon, radius sql.NullFloat64
			polygon          []byte
		)
		if err := rows.Scan(
			&rec.City,
			&rec.DayOfWeek,
			&rec.TimeStart,
			&rec.TimeEnd,
			&lat,
			&lon,
			&radius,
			&polygon,
		); err != nil {
			return nil, fmt.Errorf("list ban zones: scan row: %w", err)
		}

		rec.Lat = floatPtr(lat)
		rec.Lon = floatPtr(lon)
		rec.RadiusKm = floatPtr(radius)
		if len(polygon) > 0 {
			if err := json.Unmarshal(polygon, &rec.Polygon); err != nil {
				return nil, fmt.Errorf("list ban zones: city=%q polygon: %w", rec.City, err)
			}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ban zones: row iteration: %w", err)
	}

	return records, nil
}

// ListBanZones returns the stored catalog in first-match order.
func (r *PostgresBanZoneRepository) ListBanZones(ctx context.Context) (_ []domain.BanZone, err error) {
	defer obs.Time(ctx, "banzones.ListBanZones")(&err)

	records, err := r.ListRecords(ctx)
	if err != nil {
		return nil, domain.CatalogLoad(err)
	}

	zones, err := banzone.Build(records, r.DefaultRadiusKm)
	if err != nil {
		return nil, err
	}
	return zones, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
