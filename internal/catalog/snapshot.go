package catalog

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Provenance records where the prices of a Snapshot came from.
type Provenance string

const (
	ProvenanceStatic Provenance = "static"
	ProvenanceLive   Provenance = "live"
)

// Snapshot is a complete, immutable price view over a catalog.
type Snapshot struct {
	prices     map[Key]decimal.Decimal
	provenance Provenance
	takenAt    time.Time
}

// Static builds the snapshot made of the catalog's baseline prices.
func Static(c *Catalog) *Snapshot {
	prices := make(map[Key]decimal.Decimal, c.Len())
	for _, e := range c.entries {
		prices[e.Key] = e.UnitPrice
	}
	return &Snapshot{prices: prices, provenance: ProvenanceStatic}
}

// WithOverrides builds a new snapshot from base with the given prices replaced.
// Keys unknown to base and non-positive prices are ignored. base is not modified.
func WithOverrides(base *Snapshot, overrides map[Key]decimal.Decimal, p Provenance, at time.Time) *Snapshot {
	prices := make(map[Key]decimal.Decimal, len(base.prices))
	for k, v := range base.prices {
		prices[k] = v
	}
	for k, v := range overrides {
		if _, known := prices[k]; known && v.IsPositive() {
			prices[k] = v
		}
	}
	return &Snapshot{prices: prices, provenance: p, takenAt: at}
}

// Price returns the unit price for key.
func (s *Snapshot) Price(key Key) (decimal.Decimal, bool) {
	p, ok := s.prices[key]
	return p, ok
}

// Provenance reports where the prices came from.
func (s *Snapshot) Provenance() Provenance { return s.provenance }

// TakenAt is when live prices were fetched; zero for the static snapshot.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// SnapshotStore holds the one authoritative snapshot. Readers always observe
// a whole snapshot; Replace swaps it atomically.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotStore creates a store seeded with initial.
func NewSnapshotStore(initial *Snapshot) *SnapshotStore {
	s := &SnapshotStore{}
	s.current.Store(initial)
	return s
}

// Load returns the current snapshot.
func (s *SnapshotStore) Load() *Snapshot {
	return s.current.Load()
}

// Replace installs next as the authoritative snapshot.
func (s *SnapshotStore) Replace(next *Snapshot) {
	if next != nil {
		s.current.Store(next)
	}
}
