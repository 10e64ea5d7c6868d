package banzone

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// LoadFunc produces a fresh catalog from its source.
type LoadFunc func(ctx context.Context) (*Catalog, error)

// Reload loads a new catalog and installs it. On failure the current
// catalog stays in place.
func (h *Holder) Reload(ctx context.Context, load LoadFunc) (int, error) {
	c, err := load(ctx)
	if err != nil {
		return 0, fmt.Errorf("reload catalog: %w", err)
	}
	if c == nil {
		return 0, errors.New("reload catalog: loader returned no catalog")
	}
	h.Swap(c)
	return c.Len(), nil
}

// Watch reloads the catalog every interval until ctx is done. report, when
// set, is called after every attempt with the zone count or the error.
func (h *Holder) Watch(ctx context.Context, interval time.Duration, load LoadFunc, report func(zones int, err error)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := h.Reload(ctx, load)
			if err != nil {
				kept := 0
				if c := h.Load(); c != nil {
					kept = c.Len()
				}
				log.Printf("catalog reload failed, keeping %d zones: %v", kept, err)
			} else {
				log.Printf("catalog reloaded zones=%d", n)
			}
			if report != nil {
				report(n, err)
			}
		}
	}
}
