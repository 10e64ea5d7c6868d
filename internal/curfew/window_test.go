package curfew

import (
	"testing"
	"time"
	"truck-eta-service/internal/domain"
)

var riyadh = time.FixedZone("AST", 3*60*60)

func clock(t *testing.T, s string) domain.ClockTime {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return c
}

func TestParseClock(t *testing.T) {
	good := map[string]domain.ClockTime{
		"6:00":     {Hour: 6},
		"06:00":    {Hour: 6},
		"22:30:15": {Hour: 22, Minute: 30, Second: 15},
		" 00:00 ":  {},
	}
	for in, want := range good {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "6", "6pm", "24:00", "12:60", "12:5", "1:2:3:4", "06-00"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("ParseClock(%q) expected error", in)
		}
	}
}

func TestIsActiveDaytimeWindow(t *testing.T) {
	start, end := clock(t, "06:00"), clock(t, "10:00")
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, riyadh)

	cases := []struct {
		at   time.Time
		want bool
	}{
		{day.Add(5*time.Hour + 59*time.Minute), false},
		{day.Add(6 * time.Hour), true},
		{day.Add(8 * time.Hour), true},
		{day.Add(10 * time.Hour), true},
		{day.Add(10*time.Hour + time.Second), false},
	}
	for _, c := range cases {
		if got := IsActive(c.at, start, end, riyadh); got != c.want {
			t.Fatalf("IsActive(%s) = %v, want %v", c.at.Format("15:04:05"), got, c.want)
		}
	}
}

func TestOvernightWindowBeforeMidnight(t *testing.T) {
	start, end := clock(t, "22:00"), clock(t, "02:00")
	now := time.Date(2025, 1, 6, 23, 30, 0, 0, riyadh)

	if !IsActive(now, start, end, riyadh) {
		t.Fatalf("window should be active at 23:30")
	}

	resolved := ResolveEnd(now, start, end, riyadh)
	want := time.Date(2025, 1, 7, 2, 0, 0, 0, riyadh)
	if !resolved.Equal(want) {
		t.Fatalf("resolved end = %v, want %v", resolved, want)
	}

	if wait := WaitUntilClear(now, resolved); wait != 150*time.Minute {
		t.Fatalf("wait = %v, want 2h30m", wait)
	}
}

func TestOvernightWindowAfterMidnightStaysOnOwnDate(t *testing.T) {
	start, end := clock(t, "22:00"), clock(t, "02:00")
	now := time.Date(2025, 1, 6, 1, 0, 0, 0, riyadh)

	// Resolved on day D: 22:00 D through 02:00 D+1, so 01:00 D is outside.
	if IsActive(now, start, end, riyadh) {
		t.Fatalf("window resolved on own date must not cover 01:00")
	}

	resolved := ResolveEnd(now, start, end, riyadh)
	want := time.Date(2025, 1, 7, 2, 0, 0, 0, riyadh)
	if !resolved.Equal(want) {
		t.Fatalf("resolved end = %v, want %v", resolved, want)
	}
}

func TestResolveUsesLocalDate(t *testing.T) {
	start, end := clock(t, "06:00"), clock(t, "10:00")
	// 2025-01-06 03:00 UTC is 06:00 in Riyadh.
	now := time.Date(2025, 1, 6, 3, 0, 0, 0, time.UTC)

	if !IsActive(now, start, end, riyadh) {
		t.Fatalf("expected active at local 06:00")
	}
	got := ResolveEnd(now, start, end, riyadh)
	if want := time.Date(2025, 1, 6, 10, 0, 0, 0, riyadh); !got.Equal(want) {
		t.Fatalf("resolved end = %v, want %v", got, want)
	}
}

func TestWaitUntilClearNeverNegative(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, riyadh)
	if w := WaitUntilClear(now, now.Add(-time.Hour)); w != 0 {
		t.Fatalf("wait = %v, want 0", w)
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" monday")
	if err != nil || d != time.Monday {
		t.Fatalf("ParseWeekday = %v, %v; want Monday", d, err)
	}
	if _, err := ParseWeekday("Mon"); err == nil {
		t.Fatalf("expected error for abbreviated weekday")
	}
}
