// Command etacli estimates a file of trips offline and writes the results
// as JSON, with optional CSV reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"truck-eta-service/internal/adapters/routing"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/config"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/report"
	"truck-eta-service/internal/services"
)

type options struct {
	input       string
	output      string
	outputCSV   string
	scheduleCSV string

	banRadiusKm      float64
	vehicleSpeedKmph float64
	maxDrivingHours  float64
}

// tripJSON is one trip of the input file. Overrides are optional.
type tripJSON struct {
	Key              string   `json:"key"`
	VehicleKey       string   `json:"vehicle_key"`
	StartTime        string   `json:"start_time"`
	StartDatetime    string   `json:"start_datetime"`
	StartLat         *float64 `json:"start_lat"`
	StartLng         *float64 `json:"start_lng"`
	StartLon         *float64 `json:"start_lon"`
	EndLat           *float64 `json:"end_lat"`
	EndLng           *float64 `json:"end_lng"`
	EndLon           *float64 `json:"end_lon"`
	BanRadiusKm      *float64 `json:"ban_radius_km,omitempty"`
	VehicleSpeedKmph *float64 `json:"vehicle_speed_kmph,omitempty"`
	MaxDrivingHours  *float64 `json:"max_driving_hours,omitempty"`
}

type resultJSON struct {
	ETA   string `json:"eta,omitempty"`
	Error string `json:"error,omitempty"`
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "trips file (.json or .csv)")
	flag.StringVar(&opts.input, "i", "", "shorthand for --input")
	flag.StringVar(&opts.output, "output", "", "results JSON file (default stdout)")
	flag.StringVar(&opts.output, "o", "", "shorthand for --output")
	flag.StringVar(&opts.outputCSV, "output-csv", "", "write key,eta CSV to this file")
	flag.StringVar(&opts.scheduleCSV, "schedule-csv", "", "write the full schedule CSV to this file")
	flag.Float64Var(&opts.banRadiusKm, "ban-radius-km", 0, "override ban radius for every trip")
	flag.Float64Var(&opts.vehicleSpeedKmph, "vehicle-speed-kmph", 0, "override vehicle speed for every trip")
	flag.Float64Var(&opts.maxDrivingHours, "max-driving-hours", 0, "override driving cap for every trip")
	flag.Parse()

	if opts.input == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	inputs, err := readTrips(opts.input)
	if err != nil {
		return err
	}
	applyFlagOverrides(inputs, opts)

	catalog, err := banzone.LoadCatalog(cfg.BanPolygonsPath, cfg.BanTimesPath, cfg.BanRadiusKm, cfg.Location)
	if err != nil {
		return err
	}

	provider, err := routing.NewORSRouteProvider(cfg.ORSAPIKey,
		routing.WithBaseURL(cfg.ORSBaseURL),
		routing.WithProfile(cfg.ORSProfile),
	)
	if err != nil {
		return err
	}

	estimator := &services.TripEstimator{
		Provider: provider,
		Catalogs: banzone.NewHolder(catalog),
		Defaults: services.EstimateDefaults{
			SpeedKmph:       cfg.DefaultSpeedKmph,
			Rules:           cfg.Rules(),
			SampleSpacingKm: cfg.SampleSpacingKm,
			Location:        cfg.Location,
		},
		Concurrency: cfg.TripConcurrency,
	}

	results := estimateAll(ctx, estimator, inputs, cfg)
	log.Printf("estimated trips=%d zones=%d", len(results), catalog.Len())

	if err := writeJSON(opts.output, results); err != nil {
		return err
	}
	if opts.outputCSV != "" {
		if err := writeFile(opts.outputCSV, func(w io.Writer) error { return report.WriteETACSV(w, results) }); err != nil {
			return err
		}
	}
	if opts.scheduleCSV != "" {
		if err := writeFile(opts.scheduleCSV, func(w io.Writer) error { return report.WriteScheduleCSV(w, results) }); err != nil {
			return err
		}
	}
	return nil
}

// estimateAll validates every trip, estimates the valid ones as one batch and
// returns results in input order.
func estimateAll(ctx context.Context, e *services.TripEstimator, inputs []services.TripInput, cfg *config.Config) []domain.TripResult {
	results := make([]domain.TripResult, len(inputs))
	var (
		reqs []domain.TripRequest
		idx  []int
	)
	for i, in := range inputs {
		req, terr := services.BuildTripRequest(in, cfg.Location)
		if terr != nil {
			results[i] = domain.Failed(in.Key, in.VehicleKey, terr)
			continue
		}
		reqs = append(reqs, req)
		idx = append(idx, i)
	}

	for j, res := range e.EstimateBatch(ctx, reqs) {
		results[idx[j]] = res
	}
	return results
}

func readTrips(path string) ([]services.TripInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read trips: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return report.ReadTripsCSV(f)
	}

	var raw []tripJSON
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("read trips %s: %w", path, err)
	}

	out := make([]services.TripInput, len(raw))
	for i, t := range raw {
		out[i] = services.TripInput{
			Key:              t.Key,
			VehicleKey:       t.VehicleKey,
			StartTime:        firstNonEmpty(t.StartTime, t.StartDatetime),
			StartLat:         t.StartLat,
			StartLon:         firstSet(t.StartLng, t.StartLon),
			EndLat:           t.EndLat,
			EndLon:           firstSet(t.EndLng, t.EndLon),
			BanRadiusKm:      t.BanRadiusKm,
			VehicleSpeedKmph: t.VehicleSpeedKmph,
			MaxDrivingHours:  t.MaxDrivingHours,
		}
	}
	return out, nil
}

// applyFlagOverrides fills overrides the trip itself leaves unset.
func applyFlagOverrides(inputs []services.TripInput, opts options) {
	for i := range inputs {
		in := &inputs[i]
		if in.BanRadiusKm == nil && opts.banRadiusKm > 0 {
			v := opts.banRadiusKm
			in.BanRadiusKm = &v
		}
		if in.VehicleSpeedKmph == nil && opts.vehicleSpeedKmph > 0 {
			v := opts.vehicleSpeedKmph
			in.VehicleSpeedKmph = &v
		}
		if in.MaxDrivingHours == nil && opts.maxDrivingHours > 0 {
			v := opts.maxDrivingHours
			in.MaxDrivingHours = &v
		}
	}
}

func writeJSON(path string, results []domain.TripResult) error {
	out := make(map[string]resultJSON, len(results))
	for _, res := range results {
		switch {
		case res.Err != nil:
			out[res.Key] = resultJSON{Error: res.Err.Error()}
		case res.Schedule != nil:
			out[res.Key] = resultJSON{ETA: res.Schedule.ETA.Format(domain.DisplayTimeLayout)}
		}
	}

	encode := func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if path == "" {
		return encode(os.Stdout)
	}
	return writeFile(path, encode)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstSet(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
