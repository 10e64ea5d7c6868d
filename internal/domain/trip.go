package domain

import "time"

// Optional per-trip overrides. Nil fields fall back to configured defaults.
type TripOverrides struct {
	BanRadiusKm     *float64
	SpeedKmph       *float64
	MaxDrivingHours *float64
}

// Represents a single validated trip to estimate.
// StartAt is already expressed in the configured local time zone.
type TripRequest struct {
	Key        string
	VehicleKey string
	Start      Coordinate
	End        Coordinate
	StartAt    time.Time
	Overrides  TripOverrides
}

// Outcome of estimating one trip. Exactly one of Schedule and Err is set.
type TripResult struct {
	Key        string
	VehicleKey string
	Schedule   *Schedule
	Err        *TripError
}

func (r TripResult) OK() bool { return r.Err == nil && r.Schedule != nil }

// Ok builds a successful result.
func Ok(req TripRequest, s *Schedule) TripResult {
	return TripResult{Key: req.Key, VehicleKey: req.VehicleKey, Schedule: s}
}

// Failed builds an error result.
func Failed(key, vehicleKey string, err *TripError) TripResult {
	return TripResult{Key: key, VehicleKey: vehicleKey, Err: err}
}
