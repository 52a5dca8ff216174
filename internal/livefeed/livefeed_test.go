package livefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/intent"
)

const sampleBody = `{"records":[
 {"state":"Delhi","market":"Azadpur","commodity":"Potato","arrival_date":"18/10/2026","modal_price":"2600"},
 {"state":"Karnataka","market":"Kolar","commodity":"Tomato","arrival_date":"18/10/2026","modal_price":3150},
 {"state":"Punjab","market":"Khanna","commodity":"Tomato","arrival_date":"18/10/2026","modal_price":"9999"},
 {"state":"Kerala","market":"Kochi","commodity":"Banana","arrival_date":"18/10/2026","modal_price":"4000"},
 {"state":"Gujarat","market":"Surat","commodity":"","modal_price":"1"}
]}`

func newFeed(t *testing.T, h http.HandlerFunc) *Feed {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		Enabled:    true,
		Endpoint:   srv.URL + "/resource",
		ResourceID: "abc",
		APIKey:     "key",
		Timeout:    200 * time.Millisecond,
	}, srv.Client())
}

func TestFetchLive(t *testing.T) {
	var gotQuery string
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(sampleBody))
	})

	l := feed.Fetch(context.Background(), 3)
	if !l.Live() {
		t.Fatalf("provenance = %s, want live", l.Provenance)
	}
	if len(l.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(l.Records))
	}
	if l.Records[1].ModalPrice != "3150" {
		t.Errorf("numeric modal_price decoded as %q", l.Records[1].ModalPrice)
	}
	if gotQuery != "/resource/abc?api-key=key&format=json&limit=3" {
		t.Errorf("request = %s", gotQuery)
	}
}

func TestFetchFallsBack(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", http.StatusBadGateway) }},
		{"empty records", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"records":[]}`)) }},
		{"no records field", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"message":"invalid key"}`)) }},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"records":[`)) }},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}

	want, _ := json.Marshal(FallbackRecords())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := newFeed(t, tt.h)
			for i := 0; i < 3; i++ {
				l := feed.Fetch(context.Background(), 10)
				if l.Provenance != ProvenanceFallback {
					t.Fatalf("provenance = %s, want fallback", l.Provenance)
				}
				got, _ := json.Marshal(l.Records)
				if !bytes.Equal(got, want) {
					t.Fatalf("fallback differs:\n got %s\nwant %s", got, want)
				}
			}
		})
	}
}

func TestFallbackIsFixed(t *testing.T) {
	got := FallbackRecords()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	got[0].ModalPrice = "1"
	if FallbackRecords()[0].ModalPrice != "2500" {
		t.Fatal("caller mutation leaked into fallback data")
	}
}

func TestDisabledFeedNeverCallsUpstream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()

	feed := New(Config{Enabled: false, Endpoint: srv.URL, APIKey: "key"}, srv.Client())
	if l := feed.Fetch(context.Background(), 10); l.Live() {
		t.Fatal("disabled feed returned live data")
	}
	if calls.Load() != 0 {
		t.Fatalf("upstream called %d times", calls.Load())
	}
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(sampleBody))
	})
	feed.cfg.Timeout = 5 * time.Second

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l := feed.Fetch(context.Background(), 5); !l.Live() {
				t.Error("expected live listing")
			}
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("upstream called %d times, want 1", n)
	}
}

func TestBillingItems(t *testing.T) {
	var body bytes.Buffer
	body.WriteString(`{"records":[`)
	for i := 0; i < 12; i++ {
		if i > 0 {
			body.WriteString(",")
		}
		fmt.Fprintf(&body, `{"commodity":"Item%d","market":"M","state":"S","modal_price":"%d"}`, i, 1000+i)
	}
	body.WriteString(`]}`)

	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "20" {
			t.Errorf("limit = %s, want 20", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write(body.Bytes())
	})

	items := feed.BillingItems(context.Background())
	if len(items) != 8 {
		t.Fatalf("got %d items, want 8", len(items))
	}
	if items[0].Name != "Item0" || items[0].Price != "1000" {
		t.Fatalf("items[0] = %+v", items[0])
	}

	down := newFeed(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	fb := down.BillingItems(context.Background())
	if len(fb) != 5 || fb[3].Name != "Rice" || fb[4].Price != "8500" {
		t.Fatalf("fallback billing = %+v", fb)
	}
}

func TestBillingItemPricesAreNumbers(t *testing.T) {
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records":[`+
			`{"commodity":"Wheat","market":"Karnal","state":"Haryana","modal_price":"2275"},`+
			`{"commodity":"Garlic","market":"Mandsaur","state":"MP","modal_price":"NR"},`+
			`{"commodity":"Maize","market":"Gulabbagh","state":"Bihar","modal_price":2010.5}]}`)
	})

	items := feed.BillingItems(context.Background())
	if len(items) != 2 || items[0].Name != "Wheat" || items[1].Name != "Maize" {
		t.Fatalf("items = %+v", items)
	}
	b, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(b, []byte(`"price":2275,`)) || !bytes.Contains(b, []byte(`"price":2010.5,`)) {
		t.Fatalf("live prices not encoded as numbers: %s", b)
	}

	fb, err := json.Marshal(FallbackBilling())
	if err != nil {
		t.Fatalf("marshal fallback: %v", err)
	}
	if !bytes.Contains(fb, []byte(`{"name":"Potato","price":2500}`)) {
		t.Fatalf("fallback prices not encoded as numbers: %s", fb)
	}
}

func TestRefresherAppliesOnlyLiveData(t *testing.T) {
	cat := catalog.MustDefault()
	store := catalog.NewSnapshotStore(catalog.Static(cat))
	m := intent.NewMatcher(cat)

	var fail atomic.Bool
	feed := newFeed(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	})

	fail.Store(true)
	r := NewRefresher(feed, m, store, 10, 0)
	if r.RefreshOnce(context.Background()) {
		t.Fatal("fallback data replaced the snapshot")
	}
	if p, _ := store.Load().Price(catalog.Tomato); !p.Equal(decimal.NewFromInt(32)) {
		t.Fatalf("tomato = %s, want static 32", p)
	}

	fail.Store(false)
	if !r.RefreshOnce(context.Background()) {
		t.Fatal("live data did not replace the snapshot")
	}
	snap := store.Load()
	if snap.Provenance() != catalog.ProvenanceLive {
		t.Fatalf("provenance = %s", snap.Provenance())
	}
	checks := map[catalog.Key]string{
		catalog.Potato: "26",
		catalog.Tomato: "31.5", // first Tomato record wins
		catalog.Onion:  "20",   // not in listing
	}
	for k, want := range checks {
		if p, _ := snap.Price(k); !p.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s = %s, want %s", k, p, want)
		}
	}

	// A later failure keeps the last live snapshot.
	fail.Store(true)
	r.RefreshOnce(context.Background())
	if store.Load() != snap {
		t.Fatal("failed refresh replaced the live snapshot")
	}
}
