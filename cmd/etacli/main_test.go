package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
	"truck-eta-service/internal/adapters/routing"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/config"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/services"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadTripsJSONAcceptsLngAndLon(t *testing.T) {
	path := writeTemp(t, "trips.json", `[
		{"key":"a","vehicle_key":"v","start_time":"2025-01-06T05:00:00","start_lat":24,"start_lng":46,"end_lat":24.5,"end_lng":46.5},
		{"key":"b","start_datetime":"2025-01-06 06:00","start_lat":24,"start_lon":46,"end_lat":24.5,"end_lon":46.5,"vehicle_speed_kmph":80}
	]`)

	trips, err := readTrips(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("trips = %d, want 2", len(trips))
	}
	if trips[0].StartLon == nil || *trips[0].StartLon != 46 || *trips[0].EndLon != 46.5 {
		t.Fatalf("trip a = %+v", trips[0])
	}
	if trips[1].StartTime != "2025-01-06 06:00" || *trips[1].VehicleSpeedKmph != 80 {
		t.Fatalf("trip b = %+v", trips[1])
	}
}

func TestReadTripsCSVByExtension(t *testing.T) {
	path := writeTemp(t, "trips.csv", "key,start_time,start_lat,start_lon,end_lat,end_lon\nk1,2025-01-06T05:00,24,46,24.5,46.5\n")

	trips, err := readTrips(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(trips) != 1 || trips[0].Key != "k1" {
		t.Fatalf("trips = %+v", trips)
	}
}

func TestApplyFlagOverridesKeepsTripValues(t *testing.T) {
	own := 50.0
	inputs := []services.TripInput{{Key: "a"}, {Key: "b", VehicleSpeedKmph: &own}}

	applyFlagOverrides(inputs, options{vehicleSpeedKmph: 90, maxDrivingHours: 8})

	if *inputs[0].VehicleSpeedKmph != 90 || *inputs[0].MaxDrivingHours != 8 {
		t.Fatalf("trip a = %+v", inputs[0])
	}
	if *inputs[1].VehicleSpeedKmph != 50 {
		t.Fatalf("trip b speed = %v, want 50", *inputs[1].VehicleSpeedKmph)
	}
	if inputs[0].BanRadiusKm != nil {
		t.Fatalf("unset flag must not override")
	}
}

func TestEstimateAllKeepsOrderAndInvalidTrips(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	speed := 60.0
	provider := routing.NewMockRouteProvider(nil)
	provider.Straight = true
	e := &services.TripEstimator{
		Provider: provider,
		Catalogs: banzone.NewHolder(banzone.NewCatalog(nil, loc)),
		Defaults: services.EstimateDefaults{SpeedKmph: &speed, Location: loc},
	}

	lat, lon, endLat, endLon := 24.0, 46.0, 24.5, 46.5
	inputs := []services.TripInput{
		{Key: "bad", StartTime: "2025-01-06T05:00:00"},
		{Key: "ok", StartTime: "2025-01-06T05:00:00", StartLat: &lat, StartLon: &lon, EndLat: &endLat, EndLon: &endLon},
	}

	results := estimateAll(context.Background(), e, inputs, &config.Config{Location: loc})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Key != "bad" || !domain.IsKind(results[0].Err, domain.KindInvalidTripInput) {
		t.Fatalf("result 0 = %+v", results[0])
	}
	if !results[1].OK() || results[1].Schedule.ETA.Format("15:04") != "06:15" {
		t.Fatalf("result 1 = %+v", results[1])
	}

	out := filepath.Join(t.TempDir(), "out.json")
	if err := writeJSON(out, results); err != nil {
		t.Fatalf("write json: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got map[string]resultJSON
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["ok"].ETA != "2025-01-06 06:15" || got["bad"].Error == "" {
		t.Fatalf("json = %+v", got)
	}
}
