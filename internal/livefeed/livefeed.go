// Package livefeed fetches mandi (wholesale market) prices from the
// data.gov.in open data API.
//
// Every call is bounded by a timeout. Any failure (transport error, bad
// status, undecodable body, no usable records, timeout) yields the same fixed
// fallback data set, so callers never handle an error: only the Provenance
// of a Listing tells fresh data from fallback data.
package livefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Provenance tells where a listing came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
)

var errNoRecords = errors.New("no usable records")

// Record is one market price row as served by the listing endpoint.
type Record struct {
	Commodity   string `json:"commodity"`
	Market      string `json:"market"`
	State       string `json:"state"`
	ArrivalDate string `json:"arrival_date,omitempty"`
	ModalPrice  string `json:"modal_price"` // rupees per quintal
}

// Listing is the result of a fetch.
type Listing struct {
	Records    []Record
	Provenance Provenance
}

// Live reports whether the records came from the upstream source.
func (l Listing) Live() bool { return l.Provenance == ProvenanceLive }

// Config configures the upstream source.
type Config struct {
	Enabled    bool
	Endpoint   string // base URL, e.g. https://api.data.gov.in/resource
	ResourceID string
	APIKey     string
	Timeout    time.Duration
}

// Feed is the live price adapter.
type Feed struct {
	cfg    Config
	client *http.Client
	group  singleflight.Group
}

// New creates a Feed. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client) *Feed {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Feed{cfg: cfg, client: client}
}

// Fetch returns up to limit records. It never fails: on any upstream problem
// it returns the fallback listing.
func (f *Feed) Fetch(ctx context.Context, limit int) Listing {
	records, err := f.records(ctx, limit)
	if err != nil {
		slog.Warn("live price fetch failed, using fallback", "error", err, "limit", limit)
		return Listing{Records: FallbackRecords(), Provenance: ProvenanceFallback}
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return Listing{Records: records, Provenance: ProvenanceLive}
}

// records fetches and validates upstream rows. Concurrent callers asking for
// the same limit share a single request.
func (f *Feed) records(ctx context.Context, limit int) ([]Record, error) {
	if !f.cfg.Enabled || f.cfg.APIKey == "" {
		return nil, fmt.Errorf("live feed disabled")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("invalid limit %d", limit)
	}

	v, err, shared := f.group.Do(strconv.Itoa(limit), func() (any, error) {
		// The shared request must not die with whichever caller started it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.Timeout)
		defer cancel()
		return f.get(fetchCtx, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("live price fetch shared", "limit", limit)
	}

	// Each caller gets its own slice.
	src := v.([]Record)
	out := make([]Record, len(src))
	copy(out, src)
	return out, nil
}

func (f *Feed) get(ctx context.Context, limit int) ([]Record, error) {
	u, err := url.JoinPath(f.cfg.Endpoint, f.cfg.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("building url: %w", err)
	}
	q := make(url.Values)
	q.Set("api-key", f.cfg.APIKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("live price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("live price request: status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Records []struct {
			Commodity   flexString `json:"commodity"`
			Market      flexString `json:"market"`
			State       flexString `json:"state"`
			ArrivalDate flexString `json:"arrival_date"`
			ModalPrice  flexString `json:"modal_price"`
		} `json:"records"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding live prices: %w", err)
	}

	records := make([]Record, 0, len(payload.Records))
	for _, r := range payload.Records {
		if r.Commodity == "" || r.ModalPrice == "" {
			continue
		}
		records = append(records, Record{
			Commodity:   string(r.Commodity),
			Market:      string(r.Market),
			State:       string(r.State),
			ArrivalDate: string(r.ArrivalDate),
			ModalPrice:  string(r.ModalPrice),
		})
	}
	if len(records) == 0 {
		return nil, errNoRecords
	}

	slog.Debug("live price fetch complete", "records", len(records), "duration", time.Since(start))
	return records, nil
}

// flexString accepts a JSON string or number; the open data API serves both.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(num.String())
	return nil
}
