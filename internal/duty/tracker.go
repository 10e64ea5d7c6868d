// Package duty tracks rolling driving time and decides when a rest stop is due.
package duty

import "time"

const (
	DefaultMaxDriving = 10 * time.Hour
	DefaultWindow     = 24 * time.Hour
	DefaultMinRest    = 14 * time.Hour
)

// Rules is the duty-cycle rule set.
type Rules struct {
	MaxDriving time.Duration
	Window     time.Duration
	MinRest    time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MaxDriving: DefaultMaxDriving,
		Window:     DefaultWindow,
		MinRest:    DefaultMinRest,
	}
}

// DrivingInterval is one credited stretch of driving.
type DrivingInterval struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Tracker keeps the driving history of a single trip. Not safe for concurrent use.
type Tracker struct {
	rules     Rules
	intervals []DrivingInterval
}

func NewTracker(rules Rules) *Tracker {
	return &Tracker{rules: rules}
}

func (t *Tracker) Rules() Rules { return t.rules }

// Prune drops intervals that started a full window or more before now.
func (t *Tracker) Prune(now time.Time) {
	kept := t.intervals[:0]
	for _, iv := range t.intervals {
		if now.Sub(iv.Start) < t.rules.Window {
			kept = append(kept, iv)
		}
	}
	t.intervals = kept
}

// CumulativeDriving returns driving time inside the trailing window ending at now.
func (t *Tracker) CumulativeDriving(now time.Time) time.Duration {
	t.Prune(now)

	var total time.Duration
	for _, iv := range t.intervals {
		total += iv.Duration
	}
	return total
}

// WouldExceed reports whether driving `additional` from now breaks the cap.
func (t *Tracker) WouldExceed(now time.Time, additional time.Duration) bool {
	return t.CumulativeDriving(now)+additional > t.rules.MaxDriving
}

// RestNeeded returns how long to rest at now. The rest lasts until the oldest
// retained interval leaves the window, and never less than MinRest.
func (t *Tracker) RestNeeded(now time.Time) time.Duration {
	t.Prune(now)
	if len(t.intervals) == 0 {
		return t.rules.MinRest
	}

	oldest := t.intervals[0].Start
	for _, iv := range t.intervals[1:] {
		if iv.Start.Before(oldest) {
			oldest = iv.Start
		}
	}

	rest := oldest.Add(t.rules.Window).Sub(now)
	if rest < t.rules.MinRest {
		rest = t.rules.MinRest
	}
	return rest
}

// Record appends a driving interval.
func (t *Tracker) Record(start, end time.Time) {
	t.intervals = append(t.intervals, DrivingInterval{
		Start:    start,
		End:      end,
		Duration: end.Sub(start),
	})
}

// Intervals returns a copy of the retained history.
func (t *Tracker) Intervals() []DrivingInterval {
	out := make([]DrivingInterval, len(t.intervals))
	copy(out, t.intervals)
	return out
}
