// Package report writes trip results as CSV and reads CSV trip batches.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/services"
)

var scheduleHeader = []string{
	"vehicle_key", "key", "event", "time", "lat", "lon", "city",
	"wait_minutes", "ban_arrival", "ban_departure", "message",
}

// WriteETACSV writes one key,eta row per result. Failed trips carry the
// error text in the eta column.
func WriteETACSV(w io.Writer, results []domain.TripResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"key", "eta"}); err != nil {
		return fmt.Errorf("write eta csv header: %w", err)
	}

	for _, res := range results {
		eta := ""
		switch {
		case res.Err != nil:
			eta = res.Err.Error()
		case res.Schedule != nil:
			eta = res.Schedule.ETA.Format(domain.DisplayTimeLayout)
		}
		if err := cw.Write([]string{res.Key, eta}); err != nil {
			return fmt.Errorf("write eta csv key=%s: %w", res.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteScheduleCSV writes every schedule event of every result, and one
// error row for each failed trip.
func WriteScheduleCSV(w io.Writer, results []domain.TripResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return fmt.Errorf("write schedule csv header: %w", err)
	}

	for _, res := range results {
		if res.Err != nil {
			row := make([]string, len(scheduleHeader))
			row[0], row[1], row[2] = res.VehicleKey, res.Key, "error"
			row[len(row)-1] = res.Err.Error()
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write schedule csv key=%s: %w", res.Key, err)
			}
			continue
		}
		if res.Schedule == nil {
			continue
		}

		for _, ev := range res.Schedule.Events {
			if err := cw.Write(scheduleRow(res, ev)); err != nil {
				return fmt.Errorf("write schedule csv key=%s: %w", res.Key, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func scheduleRow(res domain.TripResult, ev domain.ScheduleEvent) []string {
	row := []string{
		res.VehicleKey,
		res.Key,
		string(ev.Kind),
		ev.Time.Format(domain.DisplayTimeLayout),
		strconv.FormatFloat(ev.Location.Lat, 'f', 6, 64),
		strconv.FormatFloat(ev.Location.Lon, 'f', 6, 64),
		"", "", "", "", "",
	}
	if d := ev.Delay; d != nil {
		row[6] = d.Label
		row[7] = strconv.Itoa(ev.WaitMinutes())
		row[8] = d.HitAt.Format(domain.DisplayTimeLayout)
		row[9] = ev.DepartAt().Format(domain.DisplayTimeLayout)
	}
	return row
}

// ReadTripsCSV reads trips with columns key, vehicle_key, start_time
// (or start_datetime), start_lat, start_lon (or start_lng), end_lat and
// end_lon (or end_lng). Column order is free.
func ReadTripsCSV(r io.Reader) ([]services.TripInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read trips csv: empty file")
		}
		return nil, fmt.Errorf("read trips csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	index := func(names ...string) int {
		for _, n := range names {
			if i, ok := col[n]; ok {
				return i
			}
		}
		return -1
	}

	var (
		keyCol      = index("key")
		vehicleCol  = index("vehicle_key")
		startCol    = index("start_time", "start_datetime")
		startLatCol = index("start_lat")
		startLonCol = index("start_lon", "start_lng")
		endLatCol   = index("end_lat")
		endLonCol   = index("end_lon", "end_lng")
	)
	if keyCol < 0 || startCol < 0 {
		return nil, errors.New("read trips csv: key and start_time columns are required")
	}

	var trips []services.TripInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read trips csv line %d: %w", line, err)
		}

		field := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		in := services.TripInput{
			Key:        field(keyCol),
			VehicleKey: field(vehicleCol),
			StartTime:  field(startCol),
		}
		for _, c := range []struct {
			i   int
			dst **float64
		}{
			{startLatCol, &in.StartLat},
			{startLonCol, &in.StartLon},
			{endLatCol, &in.EndLat},
			{endLonCol, &in.EndLon},
		} {
			v := field(c.i)
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("read trips csv line %d: %q is not a number", line, v)
			}
			*c.dst = &f
		}
		trips = append(trips, in)
	}

	return trips, nil
}
