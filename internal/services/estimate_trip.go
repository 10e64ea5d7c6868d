package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/duty"
	"truck-eta-service/internal/platform/obs"
	"truck-eta-service/internal/ports"
)

// EstimateDefaults are the configured values trip overrides fall back to.
// A nil SpeedKmph means segment durations come from the route provider.
type EstimateDefaults struct {
	SpeedKmph       *float64
	Rules           duty.Rules
	SampleSpacingKm float64
	Location        *time.Location
}

// EstimateObserver receives trip outcomes, e.g. for metrics.
type EstimateObserver interface {
	ObserveTrip(outcome string, elapsed time.Duration)
	ObserveDelay(kind domain.DelayKind, wait time.Duration)
}

// TripEstimator fetches routes and simulates trips against the current catalog.
type TripEstimator struct {
	Provider  ports.RouteProvider
	Catalogs  *banzone.Holder
	Defaults  EstimateDefaults
	Publisher ports.ResultPublisher
	Observer  EstimateObserver

	// Concurrency bounds EstimateBatch fan-out. Zero means DefaultConcurrency.
	Concurrency int
}

// EstimateTrip simulates one trip. Failures are returned inside the result.
func (e *TripEstimator) EstimateTrip(ctx context.Context, req domain.TripRequest) domain.TripResult {
	var err error
	defer obs.Time(ctx, "estimate_trip key="+req.Key)(&err)

	start := time.Now()
	res := e.estimate(ctx, req)
	if res.Err != nil {
		err = res.Err
	}

	e.observe(res, time.Since(start))
	e.publish(ctx, res)
	return res
}

func (e *TripEstimator) estimate(ctx context.Context, req domain.TripRequest) domain.TripResult {
	cfg, terr := e.simulationConfig(req.Overrides)
	if terr != nil {
		return domain.Failed(req.Key, req.VehicleKey, terr)
	}

	catalog := e.catalog(cfg.Location)
	if req.Overrides.BanRadiusKm != nil {
		catalog = catalog.WithRadius(*req.Overrides.BanRadiusKm)
	}

	if e.Provider == nil {
		return domain.Failed(req.Key, req.VehicleKey, domain.RouteUnavailable(errors.New("no route provider configured")))
	}
	route, err := e.Provider.GetRoute(ctx, req.Start, req.End)
	if err != nil {
		return domain.Failed(req.Key, req.VehicleKey,
			domain.AsTripError(fmt.Errorf("estimate trip: get route: %w", err), domain.KindRouteUnavailable))
	}

	sched, err := Simulate(route, req.StartAt, catalog, cfg)
	if err != nil {
		return domain.Failed(req.Key, req.VehicleKey, domain.AsTripError(err, domain.KindRouteUnavailable))
	}
	return domain.Ok(req, sched)
}

func (e *TripEstimator) simulationConfig(o domain.TripOverrides) (SimulationConfig, *domain.TripError) {
	if terr := validateOverrides(o); terr != nil {
		return SimulationConfig{}, terr
	}

	rules := e.Defaults.Rules
	if rules.MaxDriving <= 0 {
		rules = duty.DefaultRules()
	}
	if o.MaxDrivingHours != nil {
		rules.MaxDriving = hoursToDuration(*o.MaxDrivingHours)
	}

	cfg := SimulationConfig{
		Rules:           rules,
		SampleSpacingKm: e.Defaults.SampleSpacingKm,
		Location:        e.Defaults.Location,
	}
	switch {
	case o.SpeedKmph != nil:
		cfg.SpeedKmph = *o.SpeedKmph
	case e.Defaults.SpeedKmph != nil:
		cfg.SpeedKmph = *e.Defaults.SpeedKmph
	}
	return cfg, nil
}

func (e *TripEstimator) catalog(loc *time.Location) *banzone.Catalog {
	if e.Catalogs != nil {
		if c := e.Catalogs.Load(); c != nil {
			return c
		}
	}
	return banzone.NewCatalog(nil, loc)
}

func (e *TripEstimator) observe(res domain.TripResult, elapsed time.Duration) {
	if e.Observer == nil {
		return
	}
	outcome := "ok"
	if res.Err != nil {
		outcome = string(res.Err.Kind)
	}
	e.Observer.ObserveTrip(outcome, elapsed)
	if res.Schedule != nil {
		for _, d := range res.Schedule.Delays {
			e.Observer.ObserveDelay(d.Kind, d.Wait)
		}
	}
}

func (e *TripEstimator) publish(ctx context.Context, res domain.TripResult) {
	if e.Publisher == nil {
		return
	}
	if err := e.Publisher.PublishResult(ctx, res); err != nil {
		log.Printf("estimate trip: publish result key=%s: %v", res.Key, err)
	}
}
