package dto

import "truck-eta-service/internal/services"

type TripRequest struct {
	Key              string   `json:"key"`
	VehicleKey       string   `json:"vehicle_key,omitempty"`
	StartTime        string   `json:"start_time"`
	StartLat         *float64 `json:"start_lat"`
	StartLng         *float64 `json:"start_lng"`
	EndLat           *float64 `json:"end_lat"`
	EndLng           *float64 `json:"end_lng"`
	BanRadiusKm      *float64 `json:"ban_radius_km,omitempty"`
	VehicleSpeedKmph *float64 `json:"vehicle_speed_kmph,omitempty"`
	MaxDrivingHours  *float64 `json:"max_driving_hours,omitempty"`

	// Accepted for older clients and ignored; the server's ORS key is used.
	ORSAPIKey string `json:"ors_api_key,omitempty"`
}

func (t TripRequest) Input() services.TripInput {
	return services.TripInput{
		Key:              t.Key,
		VehicleKey:       t.VehicleKey,
		StartTime:        t.StartTime,
		StartLat:         t.StartLat,
		StartLon:         t.StartLng,
		EndLat:           t.EndLat,
		EndLon:           t.EndLng,
		BanRadiusKm:      t.BanRadiusKm,
		VehicleSpeedKmph: t.VehicleSpeedKmph,
		MaxDrivingHours:  t.MaxDrivingHours,
	}
}

type BatchRequest struct {
	Trips []TripRequest `json:"trips"`
}

// BatchItem holds either the ETA or the error for one trip.
type BatchItem struct {
	ETA       string `json:"eta,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

type ScheduleEventResponse struct {
	Event        string  `json:"event"`
	Time         string  `json:"time"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	City         string  `json:"city,omitempty"`
	WaitMinutes  int     `json:"wait_minutes,omitempty"`
	BanArrival   string  `json:"ban_arrival,omitempty"`
	BanDeparture string  `json:"ban_departure,omitempty"`
}

type ETAResponse struct {
	Key        string                  `json:"key"`
	VehicleKey string                  `json:"vehicle_key,omitempty"`
	ETA        string                  `json:"eta"`
	Schedule   []ScheduleEventResponse `json:"schedule"`
	Route      [][2]float64            `json:"route,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
	Field     string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status              string `json:"status"`
	Message             string `json:"message,omitempty"`
	CatalogSource       string `json:"catalog_source,omitempty"`
	CatalogZones        int    `json:"catalog_zones"`
	ORSAPIKeyConfigured bool   `json:"ors_api_key_configured"`
}
