package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"
	"truck-eta-service/internal/domain"
)

var ast = time.FixedZone("AST", 3*60*60)

func sampleResults() []domain.TripResult {
	start := time.Date(2025, 1, 6, 5, 0, 0, 0, ast)
	hit := start.Add(75 * time.Minute)
	clear := time.Date(2025, 1, 6, 10, 0, 0, 0, ast)
	delay := domain.DelayRecord{
		Kind:     domain.DelayBan,
		Label:    "X",
		Wait:     clear.Sub(hit),
		HitAt:    hit,
		ClearAt:  clear,
		Location: domain.Coordinate{Lat: 24.5, Lon: 46.5},
	}

	ok := domain.TripResult{Key: "t1", VehicleKey: "v1", Schedule: &domain.Schedule{
		Events: []domain.ScheduleEvent{
			{Kind: domain.EventStart, Time: start, Location: domain.Coordinate{Lat: 24, Lon: 46}},
			{Kind: domain.EventBan, Time: hit, Location: delay.Location, Delay: &delay},
			{Kind: domain.EventEnd, Time: clear, Location: delay.Location},
		},
		Delays: []domain.DelayRecord{delay},
		ETA:    clear,
	}}
	failed := domain.Failed("t2", "v2", domain.RouteUnavailable(errors.New("no route")))
	return []domain.TripResult{ok, failed}
}

func TestWriteETACSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteETACSV(&buf, sampleResults()); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][0] != "t1" || rows[1][1] != "2025-01-06 10:00" {
		t.Fatalf("ok row = %v", rows[1])
	}
	if rows[2][0] != "t2" || !strings.Contains(rows[2][1], "no route") {
		t.Fatalf("error row = %v", rows[2])
	}
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScheduleCSV(&buf, sampleResults()); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// header, three events, one error row
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}

	ban := rows[2]
	if ban[2] != "ban" || ban[6] != "X" || ban[7] != "225" || ban[8] != "2025-01-06 06:15" || ban[9] != "2025-01-06 10:00" {
		t.Fatalf("ban row = %v", ban)
	}
	if rows[3][2] != "end" || rows[3][3] != "2025-01-06 10:00" {
		t.Fatalf("end row = %v", rows[3])
	}
	if rows[4][2] != "error" || rows[4][1] != "t2" {
		t.Fatalf("error row = %v", rows[4])
	}
}

func TestReadTripsCSV(t *testing.T) {
	in := "vehicle_key,key,start_lat,start_lon,end_lat,end_lon,start_datetime\n" +
		"v1,t1,24.0,46.0,24.5,46.5,2025-01-06T05:00:00\n" +
		"v2,t2,,46.0,24.5,46.5,2025-01-06T06:00:00\n"

	trips, err := ReadTripsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("trips = %d, want 2", len(trips))
	}
	if trips[0].Key != "t1" || trips[0].VehicleKey != "v1" || *trips[0].EndLon != 46.5 {
		t.Fatalf("trip 0 = %+v", trips[0])
	}
	if trips[0].StartTime != "2025-01-06T05:00:00" {
		t.Fatalf("start time = %q", trips[0].StartTime)
	}
	if trips[1].StartLat != nil {
		t.Fatalf("blank start_lat should stay unset")
	}

	if _, err := ReadTripsCSV(strings.NewReader("key,start_time\nk,x\n")); err != nil {
		t.Fatalf("minimal columns: %v", err)
	}
	if _, err := ReadTripsCSV(strings.NewReader("lat,lon\n1,2\n")); err == nil {
		t.Fatalf("expected error without key column")
	}
	if _, err := ReadTripsCSV(strings.NewReader("key,start_time,start_lat\nk,x,north\n")); err == nil {
		t.Fatalf("expected error for non-numeric latitude")
	}
}
