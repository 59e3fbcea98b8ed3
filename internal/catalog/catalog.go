package catalog

import (
	"sync/atomic"
	"time"

	"github.com/scaryPonens/fundadvisor/internal/domain"

	"github.com/blevesearch/bleve/v2"
)

// Catalog is an immutable snapshot of the fund dataset plus its search
// index. A new snapshot replaces the whole thing; rows never mutate.
type Catalog struct {
	funds    []domain.Fund
	index    bleve.Index
	loadedAt time.Time
	skipped  int
}

// Funds returns the rows in original dataset order. The slice is a copy.
func (c *Catalog) Funds() []domain.Fund {
	out := make([]domain.Fund, len(c.funds))
	copy(out, c.funds)
	return out
}

// Len reports the number of valid rows loaded.
func (c *Catalog) Len() int { return len(c.funds) }

// SkippedRows reports how many malformed rows the load dropped.
func (c *Catalog) SkippedRows() int { return c.skipped }

// LoadedAt is the wall time of the load.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// NewestUpdate returns the most recent last_updated across all rows, used
// for dataset-wide staleness checks.
func (c *Catalog) NewestUpdate() time.Time {
	var newest time.Time
	for _, f := range c.funds {
		if f.LastUpdated.After(newest) {
			newest = f.LastUpdated
		}
	}
	return newest
}

// DaysOld computes a fund's age in whole days at the given instant.
func DaysOld(f domain.Fund, now time.Time) int {
	if f.LastUpdated.IsZero() {
		return 0
	}
	d := int(now.Sub(f.LastUpdated).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// FreshnessOf badges a fund's data age at the given instant.
func FreshnessOf(f domain.Fund, now time.Time) domain.Freshness {
	return domain.ClassifyFreshness(DaysOld(f, now))
}

// Handle is a swappable pointer to the current snapshot. The monitor job
// is the only writer; everything else reads.
type Handle struct {
	ptr atomic.Pointer[Catalog]
}

// NewHandle seeds a handle with the startup snapshot.
func NewHandle(c *Catalog) *Handle {
	h := &Handle{}
	h.ptr.Store(c)
	return h
}

// Snapshot returns the current catalog.
func (h *Handle) Snapshot() *Catalog { return h.ptr.Load() }

// Swap atomically replaces the snapshot.
func (h *Handle) Swap(c *Catalog) { h.ptr.Store(c) }
