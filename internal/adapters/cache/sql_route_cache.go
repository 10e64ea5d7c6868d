package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/platform/obs"
)

// SQLRouteCache is a Postgres-backed cache of routes keyed by endpoints.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ domain.RouteGeometry, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if s.DB == nil {
		return domain.RouteGeometry{}, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.RouteGeometry{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT geometry
	FROM route_cache
	WHERE cache_key = $1;
	`

	var raw []byte
	if err := s.DB.QueryRowContext(ctx, q, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RouteGeometry{}, false, nil
		}
		return domain.RouteGeometry{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	route, err := decodeRoute(raw)
	if err != nil {
		return domain.RouteGeometry{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}
	return route, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, route domain.RouteGeometry) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	raw, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT INTO route_cache (cache_key, geometry, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (cache_key) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, raw); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
