// Package dispatch implements the query-to-reply engine.
//
// The dispatcher receives queries from transports and runs them through the
// pipeline (normalize → match → extract quantity → compose). Every step is
// pure and synchronous; the only shared input is the current price snapshot,
// loaded once per query so a reply never mixes two snapshots.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/intent"
	"github.com/nadzzz/mandirate/internal/lang"
	"github.com/nadzzz/mandirate/internal/message"
	"github.com/nadzzz/mandirate/internal/reply"
)

// Dispatcher is the central price-query engine.
type Dispatcher struct {
	matcher *intent.Matcher
	prices  *catalog.SnapshotStore
}

// New creates a Dispatcher over a matcher and the authoritative snapshot store.
func New(matcher *intent.Matcher, prices *catalog.SnapshotStore) *Dispatcher {
	return &Dispatcher{matcher: matcher, prices: prices}
}

// Handle processes a single query through the full pipeline.
// This function is passed as the transport.Handler to each transport.
// It never fails for any text input; the error return exists for the
// transport contract.
func (d *Dispatcher) Handle(ctx context.Context, q *message.Query) (*message.Result, error) {
	start := time.Now()
	logger := slog.With("query_id", q.ID, "session_id", q.Session)

	target := q.TargetLang
	if !target.Valid() {
		target = lang.Default
	}

	snap := d.prices.Load()
	normalized := intent.Normalize(q.RawText)
	res := d.matcher.Match(normalized)

	in := reply.Input{
		Resolution: res,
		Normalized: normalized,
		Quantity:   intent.DefaultQuantity,
		Target:     target,
	}
	if res.Kind == intent.Matched {
		in.Quantity = intent.ExtractQuantity(q.RawText)
		if p, ok := snap.Price(res.Entry.Key); ok {
			in.UnitPrice = p
		}
	}

	out := reply.Compose(in)

	logger.Info("query handled",
		"intent", res.Kind.String(),
		"commodity", res.Entry.Key,
		"alias", res.Alias,
		"quantity", in.Quantity,
		"wants_total", out.WantsTotal,
		"target_lang", target,
		"prices", snap.Provenance(),
		"duration", time.Since(start))

	return &message.Result{
		OriginalMessage:   q.RawText,
		TranslatedMessage: out.Text,
		IsPrice:           out.IsPrice,
	}, nil
}
