package banzone

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"truck-eta-service/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const polygonsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"city": "Riyadh"},
     "geometry": {"type": "Polygon", "coordinates": [[[46,24],[47,24],[47,25],[46,25],[46,24]]]}},
    {"type": "Feature", "properties": {"city": "Point"},
     "geometry": {"type": "Point", "coordinates": [1,2]}}
  ]
}`

func TestLoadCatalogFromJSON(t *testing.T) {
	dir := t.TempDir()
	polys := writeFile(t, dir, "polygons.geojson", polygonsGeoJSON)
	times := writeFile(t, dir, "ban_times.json", `[
	  {"city": "Riyadh", "day_of_week": "Monday", "time_start": "6:00", "time_end": "10:00"},
	  {"city": "Jeddah", "day_of_week": "Monday", "time_start": "22:00:00", "time_end": "02:00", "lat": 21.5, "lon": 39.2}
	]`)

	cat, err := LoadCatalog(polys, times, 20, riyadh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("zones = %d, want 2", cat.Len())
	}

	zones := cat.Zones()
	if _, ok := zones[0].Area.(Polygon); !ok {
		t.Fatalf("Riyadh should use its polygon, got %T", zones[0].Area)
	}
	circle, ok := zones[1].Area.(Circle)
	if !ok || circle.RadiusKm != 20 {
		t.Fatalf("Jeddah should be a 20km circle, got %#v", zones[1].Area)
	}
	if !zones[1].Overnight() {
		t.Fatalf("Jeddah window should be overnight")
	}

	at := time.Date(2025, 1, 6, 7, 0, 0, 0, riyadh)
	if z, ok := cat.FindActive(domain.Coordinate{Lat: 24.5, Lon: 46.5}, at); !ok || z.City != "Riyadh" {
		t.Fatalf("expected Riyadh active, got %q ok=%v", z.City, ok)
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	dir := t.TempDir()
	times := writeFile(t, dir, "ban_times.yaml", `
- city: Dammam
  day_of_week: Tuesday
  time_start: "13:00"
  time_end: "16:30"
  lat: 26.42
  lon: 50.09
  radius_km: 8
`)

	cat, err := LoadCatalog("", times, 20, riyadh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	z := cat.Zones()[0]
	if z.Weekday != time.Tuesday || z.End != (domain.ClockTime{Hour: 16, Minute: 30}) {
		t.Fatalf("unexpected zone: %+v", z)
	}
	if c := z.Area.(Circle); c.RadiusKm != 8 {
		t.Fatalf("radius = %v, want 8", c.RadiusKm)
	}
}

func TestLoadCatalogRejectsBadTimes(t *testing.T) {
	dir := t.TempDir()
	times := writeFile(t, dir, "ban_times.json", `[
	  {"city": "Riyadh", "day_of_week": "Monday", "time_start": "6am", "time_end": "10:00", "lat": 24, "lon": 46}
	]`)

	_, err := LoadCatalog("", times, 20, riyadh)
	if !domain.IsKind(err, domain.KindCatalogLoad) {
		t.Fatalf("expected catalog load error, got %v", err)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog("", filepath.Join(t.TempDir(), "nope.json"), 20, riyadh)
	if !domain.IsKind(err, domain.KindCatalogLoad) {
		t.Fatalf("expected catalog load error, got %v", err)
	}
}

func TestBuildKeepsRecordsWithoutAreaAsNonMatching(t *testing.T) {
	zones, err := Build([]Record{
		{City: "Nowhere", DayOfWeek: "Monday", TimeStart: "00:00", TimeEnd: "23:59"},
	}, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cat := NewCatalog(zones, riyadh)
	if _, ok := cat.FindActive(domain.Coordinate{}, time.Date(2025, 1, 6, 12, 0, 0, 0, riyadh)); ok {
		t.Fatalf("zone without area must never match")
	}
}
