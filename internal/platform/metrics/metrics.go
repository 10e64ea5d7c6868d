package metrics

import (
	"log"
	"net/http"
	"time"
	"truck-eta-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	TripsEstimated *prometheus.CounterVec // outcome label: ok|<error kind>
	TripDuration   prometheus.Histogram

	Delays    *prometheus.CounterVec // kind label: ban|rest
	DelayWait *prometheus.HistogramVec

	CatalogZones   prometheus.Gauge
	CatalogReloads *prometheus.CounterVec // result label: ok|error

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TripsEstimated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eta_trips_estimated_total",
			Help: "Trips estimated, by outcome.",
		}, []string{"outcome"}),
		TripDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eta_trip_estimate_duration_seconds",
			Help:    "Wall time to fetch a route and simulate one trip.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		Delays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eta_delays_total",
			Help: "Delays inserted into schedules, by kind.",
		}, []string{"kind"}),
		DelayWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eta_delay_wait_hours",
			Help:    "Length of inserted delays in hours.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 14, 24},
		}, []string{"kind"}),
		CatalogZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eta_catalog_zones",
			Help: "Ban zones in the active catalog.",
		}),
		CatalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eta_catalog_reloads_total",
			Help: "Catalog reload attempts, by result.",
		}, []string{"result"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eta_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eta_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eta_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eta_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.TripsEstimated, c.TripDuration,
		c.Delays, c.DelayWait,
		c.CatalogZones, c.CatalogReloads,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)

	return c
}

func (c *Collector) ObserveTrip(outcome string, elapsed time.Duration) {
	c.TripsEstimated.WithLabelValues(outcome).Inc()
	c.TripDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveDelay(kind domain.DelayKind, wait time.Duration) {
	c.Delays.WithLabelValues(string(kind)).Inc()
	c.DelayWait.WithLabelValues(string(kind)).Observe(wait.Hours())
}

func (c *Collector) CatalogLoaded(zones int) {
	c.CatalogZones.Set(float64(zones))
	c.CatalogReloads.WithLabelValues("ok").Inc()
}

func (c *Collector) CatalogReloadFailed() {
	c.CatalogReloads.WithLabelValues("error").Inc()
}

func (c *Collector) NATSPublishedInc()  { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }

func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
