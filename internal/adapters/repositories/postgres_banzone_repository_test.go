package repositories

import (
	"context"
	"os"
	"testing"
	"time"
	"truck-eta-service/internal/adapters/cache"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/platform/db"
)

// testDatabaseURL names a disposable database; the test is skipped without one.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	u := os.Getenv("TEST_DATABASE_URL")
	if u == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return u
}

func f(v float64) *float64 { return &v }

func TestSeedAndListBanZones(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, testDatabaseURL(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	records := []banzone.Record{
		{City: "Riyadh", DayOfWeek: "Monday", TimeStart: "06:00", TimeEnd: "10:00", Lat: f(24.7), Lon: f(46.7)},
		{City: "Dammam", DayOfWeek: "Friday", TimeStart: "22:00", TimeEnd: "02:00",
			Polygon: [][]float64{{50, 26}, {50.2, 26}, {50.2, 26.2}, {50, 26.2}, {50, 26}}},
	}
	if err := SeedBanZones(ctx, conn, records); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewPostgresBanZoneRepository(conn, 20)
	zones, err := repo.ListBanZones(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(zones) != 2 || zones[0].City != "Riyadh" || zones[1].City != "Dammam" {
		t.Fatalf("zones = %+v", zones)
	}
	if zones[0].Weekday != time.Monday || zones[1].Start.Hour != 22 {
		t.Fatalf("zone fields = %+v", zones)
	}
	circle, ok := zones[0].Area.(banzone.Circle)
	if !ok || circle.RadiusKm != 20 {
		t.Fatalf("area = %#v, want default radius circle", zones[0].Area)
	}
	if _, ok := zones[1].Area.(banzone.Polygon); !ok {
		t.Fatalf("area = %#v, want polygon", zones[1].Area)
	}

	rc := cache.NewSQLRouteCache(conn)
	route := domain.RouteGeometry{Points: []domain.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}, HasTotals: true, DurationSeconds: 60}
	if err := rc.Put(ctx, "test-key", route); err != nil {
		t.Fatalf("cache put: %v", err)
	}
	got, ok, err := rc.Get(ctx, "test-key")
	if err != nil || !ok || len(got.Points) != 2 || got.DurationSeconds != 60 {
		t.Fatalf("cache get = %+v ok=%v err=%v", got, ok, err)
	}
}
