package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/intent"
	"github.com/nadzzz/mandirate/internal/lang"
	"github.com/nadzzz/mandirate/internal/message"
)

func newDispatcher() (*Dispatcher, *catalog.SnapshotStore) {
	cat := catalog.MustDefault()
	store := catalog.NewSnapshotStore(catalog.Static(cat))
	return New(intent.NewMatcher(cat), store), store
}

func ask(t *testing.T, d *Dispatcher, text string, target lang.Code) *message.Result {
	t.Helper()
	res, err := d.Handle(context.Background(), &message.Query{ID: "q", RawText: text, TargetLang: target})
	if err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
	return res
}

func TestHandleScenarios(t *testing.T) {
	d, _ := newDispatcher()

	tests := []struct {
		name    string
		text    string
		target  lang.Code
		want    string
		isPrice bool
	}{
		{"hindi rate", "Aloo ka rate?", lang.Hindi, "आज आलू का भाव लगभग ₹25/किलो है।", true},
		{"english total", "2 kg tamatar total price", lang.English, "Total for 2 kg tomato is ₹64 (₹32/kg).", true},
		{"unresolved", "xyz123", lang.English, "Sorry, I couldn't find that item. Ask me mandi prices like 'Aloo ka rate?'", false},
		{"native script", "टमाटर का भाव", lang.English, "Today's tomato rate is approx ₹32/kg.", true},
		{"unsupported target", "pyaz", lang.Code("ta"), "Today's onion rate is approx ₹20/kg.", true},
		{"fractional quantity", "2.5 kg tamatar total price", lang.English, "Total for 1 kg tomato is ₹32 (₹32/kg).", true},
		{"bilkul is not a total", "aloo ka rate bilkul sahi batao", lang.English, "Today's potato rate is approx ₹25/kg.", true},
		{"बिल्कुल is not a total", "आलू का भाव बिल्कुल सही बताओ", lang.Hindi, "आज आलू का भाव लगभग ₹25/किलो है।", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ask(t, d, tt.text, tt.target)
			if res.TranslatedMessage != tt.want {
				t.Errorf("reply = %q, want %q", res.TranslatedMessage, tt.want)
			}
			if res.IsPrice != tt.isPrice {
				t.Errorf("isPrice = %v, want %v", res.IsPrice, tt.isPrice)
			}
			if res.OriginalMessage != tt.text {
				t.Errorf("originalMessage = %q, want %q", res.OriginalMessage, tt.text)
			}
		})
	}
}

func TestHandleUsesCurrentSnapshot(t *testing.T) {
	d, store := newDispatcher()

	live := catalog.WithOverrides(store.Load(), map[catalog.Key]decimal.Decimal{
		catalog.Tomato: decimal.RequireFromString("30.5"),
	}, catalog.ProvenanceLive, time.Now())
	store.Replace(live)

	res := ask(t, d, "3 kg tomato kitna", lang.English)
	if !strings.Contains(res.TranslatedMessage, "₹91.5 (₹30.5/kg)") {
		t.Fatalf("reply = %q", res.TranslatedMessage)
	}
}

func TestHandleNeverFails(t *testing.T) {
	d, _ := newDispatcher()
	for _, text := range []string{"", "   ", "\x00\xff", strings.Repeat("आ", 10000), "0 kg"} {
		res, err := d.Handle(context.Background(), &message.Query{RawText: text})
		if err != nil || res == nil {
			t.Fatalf("Handle(%q) = %v, %v", text, res, err)
		}
	}
}
