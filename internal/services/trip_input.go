package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"truck-eta-service/internal/domain"
)

// TripInput is an unvalidated trip as it arrives from the API or a batch file.
type TripInput struct {
	Key              string
	VehicleKey       string
	StartTime        string
	StartLat         *float64
	StartLon         *float64
	EndLat           *float64
	EndLon           *float64
	BanRadiusKm      *float64
	VehicleSpeedKmph *float64
	MaxDrivingHours  *float64
}

var startTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStartTime reads an ISO-8601 date-time. Timestamps without an offset
// are taken as wall-clock time in loc; offset-qualified ones are converted.
func ParseStartTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty start time")
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized start time %q", s)
}

// BuildTripRequest validates in and returns the immutable request.
func BuildTripRequest(in TripInput, loc *time.Location) (domain.TripRequest, *domain.TripError) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return domain.TripRequest{}, domain.InvalidInput("key", errors.New("missing"))
	}

	start, terr := coordinate("start", in.StartLat, in.StartLon)
	if terr != nil {
		return domain.TripRequest{}, terr
	}
	end, terr := coordinate("end", in.EndLat, in.EndLon)
	if terr != nil {
		return domain.TripRequest{}, terr
	}

	startAt, err := ParseStartTime(in.StartTime, loc)
	if err != nil {
		return domain.TripRequest{}, domain.InvalidInput("start_time", err)
	}

	overrides := domain.TripOverrides{
		BanRadiusKm:     in.BanRadiusKm,
		SpeedKmph:       in.VehicleSpeedKmph,
		MaxDrivingHours: in.MaxDrivingHours,
	}
	if terr := validateOverrides(overrides); terr != nil {
		return domain.TripRequest{}, terr
	}

	return domain.TripRequest{
		Key:        key,
		VehicleKey: strings.TrimSpace(in.VehicleKey),
		Start:      start,
		End:        end,
		StartAt:    startAt,
		Overrides:  overrides,
	}, nil
}

func coordinate(prefix string, lat, lon *float64) (domain.Coordinate, *domain.TripError) {
	if lat == nil {
		return domain.Coordinate{}, domain.InvalidInput(prefix+"_lat", errors.New("missing"))
	}
	if lon == nil {
		return domain.Coordinate{}, domain.InvalidInput(prefix+"_lng", errors.New("missing"))
	}
	if math.IsNaN(*lat) || *lat < -90 || *lat > 90 {
		return domain.Coordinate{}, domain.InvalidInput(prefix+"_lat", fmt.Errorf("out of range: %v", *lat))
	}
	if math.IsNaN(*lon) || *lon < -180 || *lon > 180 {
		return domain.Coordinate{}, domain.InvalidInput(prefix+"_lng", fmt.Errorf("out of range: %v", *lon))
	}
	return domain.Coordinate{Lat: *lat, Lon: *lon}, nil
}

func validateOverrides(o domain.TripOverrides) *domain.TripError {
	checks := []struct {
		field string
		v     *float64
	}{
		{"ban_radius_km", o.BanRadiusKm},
		{"vehicle_speed_kmph", o.SpeedKmph},
		{"max_driving_hours", o.MaxDrivingHours},
	}
	for _, c := range checks {
		if c.v == nil {
			continue
		}
		if math.IsNaN(*c.v) || math.IsInf(*c.v, 0) || *c.v <= 0 {
			return domain.Configuration(c.field, fmt.Errorf("must be positive, got %v", *c.v))
		}
	}
	if h := o.MaxDrivingHours; h != nil && *h < MinMaxDriving.Hours() {
		return domain.Configuration("max_driving_hours", fmt.Errorf("must be at least %v, got %vh", MinMaxDriving, *h))
	}
	return nil
}
