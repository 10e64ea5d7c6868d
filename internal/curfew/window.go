// Package curfew decides whether a recurring clock-time window is active at a
// given instant.
//
// Windows are resolved on the calendar date of the instant being tested. When
// the end is not after the start, the resolved end is pushed one day later. The
// start is never pulled back a day, so a 22:00-02:00 window tested at 01:00 is
// resolved as 22:00 today to 02:00 tomorrow and reports inactive.
package curfew

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"truck-eta-service/internal/domain"
)

// ParseClock parses "H:MM", "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (domain.ClockTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return domain.ClockTime{}, fmt.Errorf("parse clock %q: want HH:MM or HH:MM:SS", s)
	}

	vals := make([]int, 3)
	limits := []int{23, 59, 59}
	for i, p := range parts {
		if p == "" || len(p) > 2 || (i > 0 && len(p) != 2) {
			return domain.ClockTime{}, fmt.Errorf("parse clock %q: malformed field %q", s, p)
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return domain.ClockTime{}, fmt.Errorf("parse clock %q: %w", s, err)
		}
		if v < 0 || v > limits[i] {
			return domain.ClockTime{}, fmt.Errorf("parse clock %q: field %q out of range", s, p)
		}
		vals[i] = v
	}

	return domain.ClockTime{Hour: vals[0], Minute: vals[1], Second: vals[2]}, nil
}

// On returns c as an instant on now's calendar date in loc.
func On(now time.Time, c domain.ClockTime, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), c.Hour, c.Minute, c.Second, 0, loc)
}

// ResolveEnd returns the window end on now's date, one day later for overnight windows.
func ResolveEnd(now time.Time, start, end domain.ClockTime, loc *time.Location) time.Time {
	resolved := On(now, end, loc)
	if end.Seconds() <= start.Seconds() {
		resolved = resolved.AddDate(0, 0, 1)
	}
	return resolved
}

// IsActive reports whether now falls in [start, end] resolved on now's date.
// The weekday match is the caller's responsibility.
func IsActive(now time.Time, start, end domain.ClockTime, loc *time.Location) bool {
	resolvedStart := On(now, start, loc)
	resolvedEnd := ResolveEnd(now, start, end, loc)
	return !now.Before(resolvedStart) && !now.After(resolvedEnd)
}

// WaitUntilClear returns max(0, resolvedEnd - now).
func WaitUntilClear(now, resolvedEnd time.Time) time.Duration {
	if d := resolvedEnd.Sub(now); d > 0 {
		return d
	}
	return 0
}

// ParseWeekday accepts full English day names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return 0, errors.New("unknown weekday " + strconv.Quote(s))
}
