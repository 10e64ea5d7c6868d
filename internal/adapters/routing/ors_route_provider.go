package routing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/platform/obs"
	"truck-eta-service/internal/ports"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"
	DefaultProfile = "driving-car"
)

// ORSRouteProvider implements RouteProvider using the OpenRouteService
// directions API.
//
// Routes are looked up in the optional cache before calling ORS, and fresh
// routes are written back. The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	cache   ports.RouteCache
	backoff time.Duration
}

type Option func(*ORSRouteProvider)

func WithBaseURL(u string) Option {
	return func(o *ORSRouteProvider) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			o.baseURL = u
		}
	}
}

func WithProfile(p string) Option {
	return func(o *ORSRouteProvider) {
		if p = strings.TrimSpace(p); p != "" {
			o.profile = p
		}
	}
}

func WithCache(c ports.RouteCache) Option {
	return func(o *ORSRouteProvider) { o.cache = c }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSRouteProvider) {
		if c != nil {
			o.session = c
		}
	}
}

// WithBackoff sets the first retry delay.
func WithBackoff(d time.Duration) Option {
	return func(o *ORSRouteProvider) { o.backoff = d }
}

func NewORSRouteProvider(apiKey string, opts ...Option) (*ORSRouteProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSRouteProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		profile: DefaultProfile,
		backoff: initialBackoff,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// CacheKey identifies a route by its endpoints rounded to about one metre.
func CacheKey(origin, destination domain.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", origin.Lat, origin.Lon, destination.Lat, destination.Lon)
}

// GetRoute returns the driving geometry between origin and destination.
func (o *ORSRouteProvider) GetRoute(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
) (_ domain.RouteGeometry, err error) {
	defer obs.Time(ctx, "ors.GetRoute")(&err)

	key := CacheKey(origin, destination)
	if o.cache != nil {
		route, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			log.Printf("route cache read failed key=%s: %v", key, err)
		} else if ok {
			return route, nil
		}
	}

	route, err := o.fetchDirections(ctx, origin, destination)
	if err != nil {
		return domain.RouteGeometry{}, domain.RouteUnavailable(
			fmt.Errorf("fetch directions %s -> %s: %w", origin, destination, err),
		)
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, route); err != nil {
			log.Printf("route cache write failed key=%s: %v", key, err)
		}
	}

	return route, nil
}
