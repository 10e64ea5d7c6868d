package handlers

import (
	"net/http"
	"truck-eta-service/internal/api/dto"
	"truck-eta-service/internal/banzone"
)

type HealthHandler struct {
	Catalogs      *banzone.Holder
	CatalogSource string
	ORSConfigured bool
}

// Root is a minimal liveness check.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if r.URL.Path != "/" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HealthResponse{
		Status:              "ok",
		Message:             "Truck ETA API is running",
		CatalogZones:        h.zones(),
		ORSAPIKeyConfigured: h.ORSConfigured,
	})
}

// Health reports catalog and provider readiness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.HealthResponse{
		Status:              "ok",
		CatalogSource:       h.CatalogSource,
		CatalogZones:        h.zones(),
		ORSAPIKeyConfigured: h.ORSConfigured,
	}
	status := http.StatusOK
	if h.Catalogs == nil || h.Catalogs.Load() == nil {
		res.Status = "error"
		res.Message = "ban zone catalog not loaded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, res)
}

func (h *HealthHandler) zones() int {
	if h.Catalogs == nil {
		return 0
	}
	if c := h.Catalogs.Load(); c != nil {
		return c.Len()
	}
	return 0
}
