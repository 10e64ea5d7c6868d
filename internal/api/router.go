package api

import (
	"net/http"
	"time"
	"truck-eta-service/internal/api/handlers"
	"truck-eta-service/internal/banzone"

	"github.com/justinas/alice"
	"github.com/rs/cors"
)

type RouterDeps struct {
	Estimator     handlers.Estimator
	Catalogs      *banzone.Holder
	Location      *time.Location
	CatalogSource string
	ORSConfigured bool

	// Metrics is mounted at /metrics when set.
	Metrics        http.Handler
	AllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{
		Catalogs:      deps.Catalogs,
		CatalogSource: deps.CatalogSource,
		ORSConfigured: deps.ORSConfigured,
	}
	eta := &handlers.ETAHandler{
		Estimator: deps.Estimator,
		Location:  deps.Location,
	}

	mux.HandleFunc("/", health.Root)
	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/eta", eta.Estimate)
	mux.HandleFunc("/eta/batch", eta.EstimateBatch)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	return alice.New(requestIDMiddleware, loggingMiddleware, recoverPanic, c.Handler).Then(mux)
}
