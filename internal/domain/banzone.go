package domain

import (
	"fmt"
	"time"
)

// Wall-clock time of day, as written in a ban zone catalog.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// Seconds since midnight.
func (c ClockTime) Seconds() int { return c.Hour*3600 + c.Minute*60 + c.Second }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Area is the geographic test of a ban zone.
type Area interface {
	// Contains reports whether p lies inside the area.
	Contains(p Coordinate) bool
	// Valid reports whether the area is well formed enough to be matched.
	Valid() bool
}

// Represents a recurring weekly truck curfew over one geographic area.
//
// The window is local clock time and wraps past midnight when End <= Start.
// Several zones may share a city and weekday with different windows.
// ID is the catalog position and identifies the zone for dedup.
type BanZone struct {
	ID      int
	City    string
	Area    Area
	Weekday time.Weekday
	Start   ClockTime
	End     ClockTime
}

// Overnight reports whether the window spans into the next day.
func (z BanZone) Overnight() bool { return z.End.Seconds() <= z.Start.Seconds() }
