package domain

import "time"

type DelayKind string

const (
	DelayBan  DelayKind = "ban"
	DelayRest DelayKind = "rest"
)

// RestLabel is the label carried by rest delays in place of a city.
const RestLabel = "Rest Stop"

// DisplayTimeLayout is the minute-resolution local time used in reports and API responses.
const DisplayTimeLayout = "2006-01-02 15:04"

// Represents a wait incurred by either a ban zone or a mandatory rest.
// HitAt is the instant the constraint was first hit and ClearAt = HitAt + Wait.
type DelayRecord struct {
	Kind     DelayKind
	Label    string
	Wait     time.Duration
	HitAt    time.Time
	ClearAt  time.Time
	Location Coordinate
}

type EventKind string

const (
	EventStart EventKind = "start"
	EventBan   EventKind = "ban"
	EventRest  EventKind = "rest"
	EventEnd   EventKind = "end"
)

// Represents a single entry of a trip schedule.
// Delay is set for ban and rest events only.
type ScheduleEvent struct {
	Kind     EventKind
	Time     time.Time
	Location Coordinate
	Delay    *DelayRecord
}

// WaitMinutes rounds the delay up to the next whole minute.
func (e ScheduleEvent) WaitMinutes() int {
	if e.Delay == nil {
		return 0
	}
	return int((e.Delay.Wait + time.Minute - 1) / time.Minute)
}

// DepartAt is the instant the vehicle leaves a ban or rest stop.
func (e ScheduleEvent) DepartAt() time.Time {
	if e.Delay == nil {
		return e.Time
	}
	return e.Delay.HitAt.Add(e.Delay.Wait)
}

// Represents the simulated timeline of a single trip.
// Events hold exactly one start, then ban/rest events in chronological
// order, then exactly one end. Delays is the raw append-only delay list.
type Schedule struct {
	Events []ScheduleEvent
	Delays []DelayRecord
	ETA    time.Time
	Route  []Coordinate
}
