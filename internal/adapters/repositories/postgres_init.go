package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"truck-eta-service/internal/banzone"
)

// InitSchema creates the ban zone and route cache tables.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBanZonesQuery := `
	CREATE TABLE IF NOT EXISTS ban_zones (
		id INTEGER PRIMARY KEY,
		city TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		time_start TEXT NOT NULL,
		time_end TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		radius_km DOUBLE PRECISION,
		polygon JSONB
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		cache_key TEXT PRIMARY KEY,
		geometry JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_ban_zones_day_of_week
	ON ban_zones(day_of_week);
	`

	statements := []string{
		createBanZonesQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedBanZones replaces the ban_zones table with records, keeping their order
// as the row id so first-match-wins order survives the round trip.
func SeedBanZones(ctx context.Context, db *sql.DB, records []banzone.Record) error {
	if db == nil {
		return errors.New("seed ban zones: DB is nil")
	}

	for i, r := range records {
		if strings.TrimSpace(r.City) == "" {
			return fmt.Errorf("seed ban zones: record %d: city cannot be empty", i+1)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed ban zones: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ban_zones;`); err != nil {
		return fmt.Errorf("seed ban zones: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO ban_zones (
		id, city, day_of_week, time_start, time_end, lat, lon, radius_km, polygon
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`)
	if err != nil {
		return fmt.Errorf("seed ban zones: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var polygon []byte
		if len(r.Polygon) > 0 {
			polygon, err = json.Marshal(r.Polygon)
			if err != nil {
				return fmt.Errorf("seed ban zones: record %d polygon: %w", i+1, err)
			}
		}

		if _, err := stmt.ExecContext(ctx,
			i,
			strings.TrimSpace(r.City),
			r.DayOfWeek,
			r.TimeStart,
			r.TimeEnd,
			nullFloat(r.Lat),
			nullFloat(r.Lon),
			nullFloat(r.RadiusKm),
			nullJSON(polygon),
		); err != nil {
			return fmt.Errorf("seed ban zones: insert id=%d city=%q: %w", i, r.City, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed ban zones: commit tx: %w", err)
	}

	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
