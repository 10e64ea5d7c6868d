package services

import (
	"errors"
	"fmt"
	"math"
	"time"
	"truck-eta-service/internal/banzone"
	"truck-eta-service/internal/curfew"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/duty"
	"truck-eta-service/internal/geo"
)

// DefaultSampleSpacingKm is the spacing of interior ban checks on long segments.
const DefaultSampleSpacingKm = 10.0

const (
	// MinMaxDriving is the smallest driving cap a trip may use.
	MinMaxDriving = time.Minute
	// MaxTripDriving bounds the total drive time of a single trip.
	MaxTripDriving = 90 * 24 * time.Hour
)

// SimulationConfig controls a single trip simulation.
//
// SpeedKmph > 0 drives every segment at a fixed speed. Otherwise segment
// durations are the route's provider totals distributed by distance share.
type SimulationConfig struct {
	SpeedKmph       float64
	Rules           duty.Rules
	SampleSpacingKm float64
	Location        *time.Location
}

type tripState int

const (
	stateDriving tripState = iota
	stateWaitingForBan
	stateResting
	stateDone
)

func (s tripState) String() string {
	switch s {
	case stateDriving:
		return "driving"
	case stateWaitingForBan:
		return "waiting_for_ban"
	case stateResting:
		return "resting"
	case stateDone:
		return "done"
	}
	return "unknown"
}

type simulation struct {
	cfg     SimulationConfig
	catalog *banzone.Catalog
	tracker *duty.Tracker

	state    tripState
	now      time.Time
	pos      domain.Coordinate
	lastZone int
	hasLast  bool
	delays   []domain.DelayRecord
}

// Simulate walks route forward in time from startAt and returns the schedule.
//
// The walk is a deterministic fold over consecutive waypoint pairs: long
// segments are split so no piece exceeds the rolling driving cap, a rest is
// inserted before any piece that would break the cap, and the position is
// checked against the ban catalog after every piece of driving. A route with
// fewer than two waypoints yields start == end and no delays.
func Simulate(
	route domain.RouteGeometry,
	startAt time.Time,
	catalog *banzone.Catalog,
	cfg SimulationConfig,
) (*domain.Schedule, error) {
	if cfg.Rules.MaxDriving <= 0 || cfg.Rules.Window <= 0 || cfg.Rules.MinRest < 0 {
		return nil, domain.Configuration("rules", errors.New("driving cap and window must be positive"))
	}
	if cfg.Rules.MaxDriving < MinMaxDriving {
		return nil, domain.Configuration("max_driving_hours", fmt.Errorf("driving cap %v is below %v", cfg.Rules.MaxDriving, MinMaxDriving))
	}
	if cfg.SpeedKmph < 0 || math.IsNaN(cfg.SpeedKmph) {
		return nil, domain.Configuration("speed_kmph", errors.New("speed must be positive"))
	}
	if cfg.SampleSpacingKm <= 0 {
		cfg.SampleSpacingKm = DefaultSampleSpacingKm
	}
	if cfg.Location == nil {
		if catalog != nil {
			cfg.Location = catalog.Location()
		} else {
			cfg.Location = time.UTC
		}
	}
	if catalog == nil {
		catalog = banzone.NewCatalog(nil, cfg.Location)
	}

	points := route.Points
	start := startAt.In(cfg.Location)

	s := &simulation{
		cfg:     cfg,
		catalog: catalog,
		tracker: duty.NewTracker(cfg.Rules),
		state:   stateDriving,
		now:     start,
	}
	if len(points) > 0 {
		s.pos = points[0]
	}

	if len(points) >= 2 {
		durations, err := segmentDurations(route, cfg.SpeedKmph)
		if err != nil {
			return nil, err
		}

		for i := 1; i < len(points); i++ {
			s.traverse(points[i-1], points[i], durations[i-1])
		}
	}

	s.state = stateDone
	return s.schedule(start, points), nil
}

// segmentDurations returns the drive time of every consecutive waypoint pair.
func segmentDurations(route domain.RouteGeometry, speedKmph float64) ([]time.Duration, error) {
	points := route.Points
	dists := make([]float64, len(points)-1)
	total := 0.0
	for i := 1; i < len(points); i++ {
		dists[i-1] = geo.Distance(points[i-1], points[i])
		total += dists[i-1]
	}

	out := make([]time.Duration, len(dists))
	if speedKmph > 0 {
		if !withinTripLimit(total / speedKmph * float64(time.Hour)) {
			return nil, domain.Configuration("vehicle_speed_kmph",
				fmt.Errorf("%v km/h needs more than %v of driving for %.1f km", speedKmph, MaxTripDriving, total))
		}
		for i, d := range dists {
			out[i] = hoursToDuration(d / speedKmph)
		}
		return out, nil
	}

	if !route.HasTotals || route.DurationSeconds < 0 {
		return nil, domain.RouteUnavailable(errors.New("route has no provider duration and no speed is set"))
	}
	if !withinTripLimit(route.DurationSeconds * float64(time.Second)) {
		return nil, domain.RouteUnavailable(fmt.Errorf("provider duration %vs exceeds %v", route.DurationSeconds, MaxTripDriving))
	}

	// Purely spatial distribution; road speed variation inside a segment is ignored.
	for i, d := range dists {
		if total > 0 {
			out[i] = secondsToDuration(route.DurationSeconds * d / total)
		}
	}
	return out, nil
}

// withinTripLimit reports whether ns nanoseconds of driving is finite and
// no longer than MaxTripDriving.
func withinTripLimit(ns float64) bool {
	return !math.IsNaN(ns) && !math.IsInf(ns, 0) && ns <= float64(MaxTripDriving)
}

// traverse drives one waypoint pair.
func (s *simulation) traverse(p1, p2 domain.Coordinate, dur time.Duration) {
	if p1 == p2 && dur == 0 {
		return
	}

	for _, sub := range splitSegment(p1, p2, dur, s.cfg.Rules.MaxDriving) {
		s.drive(sub.from, sub.to, sub.dur)
	}
}

type subSegment struct {
	from, to domain.Coordinate
	dur      time.Duration
}

// splitSegment cuts p1 to p2 into equal-time sub-segments that each fit under
// max. Endpoints are contiguous and the durations sum to dur exactly.
func splitSegment(p1, p2 domain.Coordinate, dur, max time.Duration) []subSegment {
	n := splitCount(dur, max)
	sub := dur / time.Duration(n)

	out := make([]subSegment, n)
	from := p1
	for k := 0; k < n; k++ {
		to := geo.Interpolate(p1, p2, float64(k+1)/float64(n))
		d := sub
		if k == n-1 {
			to = p2
			d = dur - sub*time.Duration(n-1)
		}
		out[k] = subSegment{from: from, to: to, dur: d}
		from = to
	}
	return out
}

// splitCount is the minimum number of equal pieces of dur that fit under max.
func splitCount(dur, max time.Duration) int {
	if dur <= max {
		return 1
	}
	n := int(dur / max)
	if dur%max > 0 {
		n++
	}
	return n
}

// drive credits one sub-segment. Sub-segments longer than the sampling
// spacing are walked in equal pieces so bans strictly inside them are seen
// in chronological order.
func (s *simulation) drive(a, b domain.Coordinate, d time.Duration) {
	if s.tracker.WouldExceed(s.now, d) {
		s.rest()
	}

	pieces := 1
	if dist := geo.Distance(a, b); dist > s.cfg.SampleSpacingKm {
		pieces = int(dist / s.cfg.SampleSpacingKm)
	}
	pieceDur := d / time.Duration(pieces)

	for j := 0; j < pieces; j++ {
		end := b
		pd := d - pieceDur*time.Duration(pieces-1)
		if j < pieces-1 {
			end = geo.Interpolate(a, b, float64(j+1)/float64(pieces))
			pd = pieceDur
		}

		s.tracker.Record(s.now, s.now.Add(pd))
		s.now = s.now.Add(pd)
		s.pos = end
		s.checkBan()
	}
}

// rest inserts a mandatory rest at the current position.
func (s *simulation) rest() {
	s.state = stateResting

	wait := s.tracker.RestNeeded(s.now)
	s.delays = append(s.delays, domain.DelayRecord{
		Kind:     domain.DelayRest,
		Label:    domain.RestLabel,
		Wait:     wait,
		HitAt:    s.now,
		ClearAt:  s.now.Add(wait),
		Location: s.pos,
	})
	s.now = s.now.Add(wait)
	s.tracker.Prune(s.now)

	s.state = stateDriving
}

// checkBan waits out the first active zone at the current position, unless it
// is the zone that triggered last without an unblocked point in between.
func (s *simulation) checkBan() {
	z, ok := s.catalog.FindActive(s.pos, s.now)
	if !ok {
		s.hasLast = false
		return
	}
	if s.hasLast && s.lastZone == z.ID {
		return
	}

	s.state = stateWaitingForBan

	clearAt := curfew.ResolveEnd(s.now, z.Start, z.End, s.catalog.Location())
	if wait := curfew.WaitUntilClear(s.now, clearAt); wait > 0 {
		s.delays = append(s.delays, domain.DelayRecord{
			Kind:     domain.DelayBan,
			Label:    z.City,
			Wait:     wait,
			HitAt:    s.now,
			ClearAt:  clearAt,
			Location: s.pos,
		})
		s.now = clearAt
	}
	s.lastZone = z.ID
	s.hasLast = true

	s.state = stateDriving
}

func (s *simulation) schedule(start time.Time, points []domain.Coordinate) *domain.Schedule {
	var origin, destination domain.Coordinate
	if len(points) > 0 {
		origin = points[0]
		destination = points[len(points)-1]
	}
	if len(points) < 2 {
		destination = origin
	}

	events := make([]domain.ScheduleEvent, 0, len(s.delays)+2)
	events = append(events, domain.ScheduleEvent{Kind: domain.EventStart, Time: start, Location: origin})
	for i := range s.delays {
		d := s.delays[i]
		kind := domain.EventBan
		if d.Kind == domain.DelayRest {
			kind = domain.EventRest
		}
		events = append(events, domain.ScheduleEvent{Kind: kind, Time: d.HitAt, Location: d.Location, Delay: &d})
	}
	events = append(events, domain.ScheduleEvent{Kind: domain.EventEnd, Time: s.now, Location: destination})

	route := make([]domain.Coordinate, len(points))
	copy(route, points)

	return &domain.Schedule{
		Events: events,
		Delays: s.delays,
		ETA:    s.now,
		Route:  route,
	}
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}
