package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"truck-eta-service/internal/domain"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.ObserveTrip("ok", 20*time.Millisecond)
	c.ObserveTrip("ok", 30*time.Millisecond)
	c.ObserveTrip(string(domain.KindRouteUnavailable), time.Millisecond)
	c.ObserveDelay(domain.DelayBan, 3*time.Hour)
	c.CatalogLoaded(42)
	c.CatalogReloadFailed()
	c.NATSSetConnected(true)

	out := scrape(t, c)
	for _, want := range []string{
		`eta_trips_estimated_total{outcome="ok"} 2`,
		`eta_trips_estimated_total{outcome="route_unavailable"} 1`,
		`eta_delays_total{kind="ban"} 1`,
		`eta_catalog_zones 42`,
		`eta_catalog_reloads_total{result="error"} 1`,
		`eta_catalog_reloads_total{result="ok"} 1`,
		`eta_nats_connected 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, out)
		}
	}
}
