package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"truck-eta-service/internal/adapters/cache"
	"truck-eta-service/internal/adapters/publisher"
	"truck-eta-service/internal/adapters/repositories"
	"truck-eta-service/internal/adapters/routing"
	"truck-eta-service/internal/api"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/config"
	"truck-eta-service/internal/platform/db"
	"truck-eta-service/internal/platform/metrics"
	"truck-eta-service/internal/ports"
	"truck-eta-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (ORS, Postgres, Redis, NATS) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ORSAPIKey == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer database.Close()
	}

	loadCatalog, err := catalogLoader(cfg, database)
	if err != nil {
		log.Fatal(err)
	}
	catalog, err := loadCatalog(ctx)
	if err != nil {
		log.Fatal(err)
	}
	collector.CatalogLoaded(catalog.Len())
	log.Printf("ban zone catalog loaded source=%s zones=%d", cfg.CatalogSource, catalog.Len())

	catalogs := banzone.NewHolder(catalog)
	go catalogs.Watch(ctx, cfg.CatalogReloadInterval, loadCatalog, func(zones int, err error) {
		if err != nil {
			collector.CatalogReloadFailed()
			return
		}
		collector.CatalogLoaded(zones)
	})

	routeCache, closeCache, err := openRouteCache(ctx, cfg, database)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	opts := []routing.Option{
		routing.WithBaseURL(cfg.ORSBaseURL),
		routing.WithProfile(cfg.ORSProfile),
	}
	if routeCache != nil {
		opts = append(opts, routing.WithCache(routeCache))
	}
	provider, err := routing.NewORSRouteProvider(cfg.ORSAPIKey, opts...)
	if err != nil {
		log.Fatal(err)
	}

	estimator := &services.TripEstimator{
		Provider: provider,
		Catalogs: catalogs,
		Defaults: services.EstimateDefaults{
			SpeedKmph:       cfg.DefaultSpeedKmph,
			Rules:           cfg.Rules(),
			SampleSpacingKm: cfg.SampleSpacingKm,
			Location:        cfg.Location,
		},
		Observer:    collector,
		Concurrency: cfg.TripConcurrency,
	}

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, collector)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		estimator.Publisher = pub
		log.Printf("publishing trip results to %s prefix=%s", cfg.NATSURL, cfg.NATSSubjectPrefix)
	}

	deps := api.RouterDeps{
		Estimator:      estimator,
		Catalogs:       catalogs,
		Location:       cfg.Location,
		CatalogSource:  cfg.CatalogSource,
		ORSConfigured:  true,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.MetricsAddr != "" {
		metricsSrv := collector.Serve(cfg.MetricsAddr)
		defer metricsSrv.Close()
	} else {
		deps.Metrics = collector.Handler()
	}

	// Timeouts are tuned for cold-cache batch estimates (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s tz=%s", cfg.Port, cfg.Location)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// catalogLoader returns the function that (re)builds the catalog from the
// configured source.
func catalogLoader(cfg *config.Config, database *sql.DB) (banzone.LoadFunc, error) {
	switch cfg.CatalogSource {
	case config.CatalogSourcePostgres:
		if database == nil {
			return nil, fmt.Errorf("catalog loader: postgres source needs DATABASE_URL")
		}
		var repo ports.BanZoneRepository = repositories.NewPostgresBanZoneRepository(database, cfg.BanRadiusKm)
		return func(ctx context.Context) (*banzone.Catalog, error) {
			zones, err := repo.ListBanZones(ctx)
			if err != nil {
				return nil, err
			}
			return banzone.NewCatalog(zones, cfg.Location), nil
		}, nil
	default:
		return func(context.Context) (*banzone.Catalog, error) {
			return banzone.LoadCatalog(cfg.BanPolygonsPath, cfg.BanTimesPath, cfg.BanRadiusKm, cfg.Location)
		}, nil
	}
}

// openRouteCache prefers Redis, then the Postgres route_cache table, and
// runs uncached when neither is configured.
func openRouteCache(ctx context.Context, cfg *config.Config, database *sql.DB) (ports.RouteCache, func(), error) {
	switch {
	case cfg.RedisAddr != "":
		rc, err := cache.NewRedisRouteCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RouteCacheTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("route cache: redis addr=%s ttl=%s", cfg.RedisAddr, cfg.RouteCacheTTL)
		return rc, func() { _ = rc.Close() }, nil
	case database != nil:
		log.Println("route cache: postgres")
		return cache.NewSQLRouteCache(database), func() {}, nil
	default:
		log.Println("route cache: disabled")
		return nil, func() {}, nil
	}
}
