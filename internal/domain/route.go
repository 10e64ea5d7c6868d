package domain

// Represents the path returned by a routing provider for one trip.
// Points are traversed start to end and are never mutated by a simulation run.
// When HasTotals is set, DurationSeconds and DistanceMeters carry the provider's
// estimate for the whole path and drive times are distributed from them.
type RouteGeometry struct {
	Points          []Coordinate
	DurationSeconds float64
	DistanceMeters  float64
	HasTotals       bool
}
