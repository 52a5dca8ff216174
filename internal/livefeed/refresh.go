package livefeed

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/intent"
)

// kgPerQuintal converts the API's per-quintal modal price to a per-kg price.
var kgPerQuintal = decimal.NewFromInt(100)

// Refresher periodically replaces the authoritative price snapshot with one
// built from live records. Fallback data never replaces catalog prices.
type Refresher struct {
	feed     *Feed
	matcher  *intent.Matcher
	store    *catalog.SnapshotStore
	base     *catalog.Snapshot
	limit    int
	interval time.Duration
	now      func() time.Time
}

// NewRefresher creates a refresher. Overrides are always applied on top of
// the static catalog snapshot, never on top of an earlier live one.
func NewRefresher(feed *Feed, matcher *intent.Matcher, store *catalog.SnapshotStore, limit int, interval time.Duration) *Refresher {
	return &Refresher{
		feed:     feed,
		matcher:  matcher,
		store:    store,
		base:     catalog.Static(matcher.Catalog()),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

// Run refreshes once immediately and then every interval until ctx is done.
// A non-positive interval refreshes once and returns.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshOnce(ctx)
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce fetches a listing and installs a live snapshot if the listing
// is fresh and priced at least one catalog commodity. It reports whether the
// snapshot was replaced.
func (r *Refresher) RefreshOnce(ctx context.Context) bool {
	listing := r.feed.Fetch(ctx, r.limit)
	if !listing.Live() {
		slog.Info("price snapshot unchanged", "reason", "upstream unavailable", "current", r.store.Load().Provenance())
		return false
	}

	overrides := Overrides(r.matcher, listing.Records)
	if len(overrides) == 0 {
		slog.Info("price snapshot unchanged", "reason", "no catalog commodities in listing", "records", len(listing.Records))
		return false
	}

	r.store.Replace(catalog.WithOverrides(r.base, overrides, catalog.ProvenanceLive, r.now()))
	slog.Info("price snapshot replaced", "overrides", len(overrides), "records", len(listing.Records))
	return true
}

// Overrides maps records onto catalog keys, converting per-quintal prices to
// per-kg. The first record for a commodity wins; unparsable or non-positive
// prices are skipped.
func Overrides(m *intent.Matcher, records []Record) map[catalog.Key]decimal.Decimal {
	out := make(map[catalog.Key]decimal.Decimal)
	for _, rec := range records {
		res := m.Match(intent.Normalize(rec.Commodity))
		if res.Kind != intent.Matched {
			continue
		}
		if _, seen := out[res.Entry.Key]; seen {
			continue
		}
		perQuintal, err := decimal.NewFromString(strings.TrimSpace(rec.ModalPrice))
		if err != nil || !perQuintal.IsPositive() {
			continue
		}
		out[res.Entry.Key] = perQuintal.Div(kgPerQuintal)
	}
	return out
}
