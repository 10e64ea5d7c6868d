// Package banzone indexes truck curfew zones and answers which zone, if any,
// is blocking a point at a given instant.
package banzone

import (
	"log"
	"sync/atomic"
	"time"
	"truck-eta-service/internal/curfew"
	"truck-eta-service/internal/domain"
)

// Catalog is an immutable, ordered list of ban zones.
// It is safe to share across concurrent simulations.
type Catalog struct {
	zones []domain.BanZone
	loc   *time.Location
}

// NewCatalog copies zones in order. Zone IDs are reassigned to their catalog
// position. Zones with malformed geometry are kept for reporting but never match.
func NewCatalog(zones []domain.BanZone, loc *time.Location) *Catalog {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]domain.BanZone, len(zones))
	for i, z := range zones {
		z.ID = i
		if z.Area == nil || !z.Area.Valid() {
			log.Printf("banzone: excluding malformed zone id=%d city=%q weekday=%s", i, z.City, z.Weekday)
		}
		out[i] = z
	}

	return &Catalog{zones: out, loc: loc}
}

// Zones returns a copy of the catalog in match order.
func (c *Catalog) Zones() []domain.BanZone {
	out := make([]domain.BanZone, len(c.zones))
	copy(out, c.zones)
	return out
}

func (c *Catalog) Len() int { return len(c.zones) }

func (c *Catalog) Location() *time.Location { return c.loc }

// FindActive returns the zone blocking p at now.
//
// A zone matches when its area contains p, its weekday is now's local weekday
// and its window is active. Zones are checked in catalog order and the first
// match wins; when areas of different cities overlap only the earlier zone is
// reported.
func (c *Catalog) FindActive(p domain.Coordinate, now time.Time) (domain.BanZone, bool) {
	weekday := now.In(c.loc).Weekday()
	for _, z := range c.zones {
		if z.Area == nil || !z.Area.Valid() {
			continue
		}
		if z.Weekday != weekday {
			continue
		}
		if !z.Area.Contains(p) {
			continue
		}
		if curfew.IsActive(now, z.Start, z.End, c.loc) {
			return z, true
		}
	}
	return domain.BanZone{}, false
}

// WithRadius returns a catalog where every circle zone uses radiusKm.
func (c *Catalog) WithRadius(radiusKm float64) *Catalog {
	out := make([]domain.BanZone, len(c.zones))
	for i, z := range c.zones {
		if circle, ok := z.Area.(Circle); ok {
			circle.RadiusKm = radiusKm
			z.Area = circle
		}
		out[i] = z
	}
	return &Catalog{zones: out, loc: c.loc}
}

// Holder publishes the current catalog. Reloads replace the whole catalog;
// in-flight simulations keep the one they loaded.
type Holder struct {
	p atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.p.Store(c)
	return h
}

func (h *Holder) Load() *Catalog { return h.p.Load() }

// Swap installs c and returns the previous catalog.
func (h *Holder) Swap(c *Catalog) *Catalog { return h.p.Swap(c) }
