package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"truck-eta-service/internal/api/dto"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/services"
)

const maxBatchTrips = 500

// Estimator is the trip estimation service used by the ETA endpoints.
type Estimator interface {
	EstimateTrip(ctx context.Context, req domain.TripRequest) domain.TripResult
	EstimateBatch(ctx context.Context, reqs []domain.TripRequest) []domain.TripResult
}

type ETAHandler struct {
	Estimator Estimator
	Location  *time.Location
}

// Estimate returns the full schedule for a single trip.
func (h *ETAHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.TripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tr, terr := services.BuildTripRequest(req.Input(), h.Location)
	if terr != nil {
		writeTripError(w, r, terr)
		return
	}

	res := h.Estimator.EstimateTrip(r.Context(), tr)
	if res.Err != nil {
		writeTripError(w, r, res.Err)
		return
	}

	writeJSON(w, r, http.StatusOK, scheduleResponse(res))
}

// EstimateBatch returns key -> {eta} or {error} for every trip in the body.
func (h *ETAHandler) EstimateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.BatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Trips) == 0 {
		writeError(w, r, http.StatusBadRequest, "no trips provided")
		return
	}
	if len(req.Trips) > maxBatchTrips {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d trips per batch", maxBatchTrips))
		return
	}

	out := make(map[string]dto.BatchItem, len(req.Trips))
	valid := make([]domain.TripRequest, 0, len(req.Trips))
	seen := make(map[string]struct{}, len(req.Trips))

	for i, t := range req.Trips {
		tr, terr := services.BuildTripRequest(t.Input(), h.Location)
		if terr != nil && terr.Field == "key" {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("trip %d: key is required", i+1))
			return
		}

		key := t.Key
		if terr == nil {
			key = tr.Key
		}
		if _, dup := seen[key]; dup {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("duplicate trip key %q", key))
			return
		}
		seen[key] = struct{}{}

		if terr != nil {
			out[key] = batchItem(domain.Failed(key, t.VehicleKey, terr))
			continue
		}
		valid = append(valid, tr)
	}

	for _, res := range h.Estimator.EstimateBatch(r.Context(), valid) {
		out[res.Key] = batchItem(res)
	}

	writeJSON(w, r, http.StatusOK, out)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 4<<20))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func batchItem(res domain.TripResult) dto.BatchItem {
	if res.Err != nil {
		return dto.BatchItem{Error: res.Err.Error(), ErrorKind: string(res.Err.Kind)}
	}
	return dto.BatchItem{ETA: res.Schedule.ETA.Format(domain.DisplayTimeLayout)}
}

func scheduleResponse(res domain.TripResult) dto.ETAResponse {
	s := res.Schedule
	out := dto.ETAResponse{
		Key:        res.Key,
		VehicleKey: res.VehicleKey,
		ETA:        s.ETA.Format(domain.DisplayTimeLayout),
		Schedule:   make([]dto.ScheduleEventResponse, 0, len(s.Events)),
		Route:      make([][2]float64, 0, len(s.Route)),
	}

	for _, ev := range s.Events {
		e := dto.ScheduleEventResponse{
			Event: string(ev.Kind),
			Time:  ev.Time.Format(domain.DisplayTimeLayout),
			Lat:   ev.Location.Lat,
			Lon:   ev.Location.Lon,
		}
		if ev.Delay != nil {
			e.City = ev.Delay.Label
			e.WaitMinutes = ev.WaitMinutes()
			e.BanArrival = ev.Delay.HitAt.Format(domain.DisplayTimeLayout)
			e.BanDeparture = ev.DepartAt().Format(domain.DisplayTimeLayout)
		}
		out.Schedule = append(out.Schedule, e)
	}
	for _, p := range s.Route {
		out.Route = append(out.Route, [2]float64{p.Lat, p.Lon})
	}

	return out
}

func writeTripError(w http.ResponseWriter, r *http.Request, terr *domain.TripError) {
	status := http.StatusInternalServerError
	switch terr.Kind {
	case domain.KindInvalidTripInput, domain.KindConfiguration:
		status = http.StatusBadRequest
	case domain.KindRouteUnavailable:
		status = http.StatusBadGateway
	case domain.KindCatalogLoad:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, r, status, dto.ErrorResponse{
		Error:     terr.Error(),
		ErrorKind: string(terr.Kind),
		Field:     terr.Field,
	})
}
