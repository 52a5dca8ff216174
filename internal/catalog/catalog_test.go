package catalog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/lang"
)

func entry(key Key, price int64, aliases ...string) Entry {
	return Entry{
		Key:       key,
		Aliases:   aliases,
		UnitPrice: decimal.NewFromInt(price),
		Unit:      Kilogram,
		Names:     map[lang.Code]string{lang.English: string(key)},
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := New(DefaultEntries()...)
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
	for _, e := range c.Entries() {
		if e.Names[lang.Hindi] == "" {
			t.Errorf("%s has no Hindi name", e.Key)
		}
	}
}

func TestNewRejectsDefects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    error
	}{
		{"duplicate alias across entries", []Entry{entry(Potato, 25, "aloo"), entry(Onion, 20, "aloo")}, ErrDuplicateAlias},
		{"duplicate alias differing in case", []Entry{entry(Potato, 25, "Aloo"), entry(Onion, 20, "ALOO")}, ErrDuplicateAlias},
		{"duplicate alias within entry", []Entry{entry(Potato, 25, "aloo", "aloo ")}, ErrDuplicateAlias},
		{"duplicate native alias", []Entry{entry(Potato, 25, "आलू"), entry(Onion, 20, "आलू")}, ErrDuplicateAlias},
		{"duplicate key", []Entry{entry(Potato, 25, "aloo"), entry(Potato, 20, "potato")}, ErrDuplicateKey},
		{"empty alias", []Entry{entry(Potato, 25, "  ")}, ErrEmptyAlias},
		{"zero price", []Entry{entry(Potato, 0, "aloo")}, ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMustNewPanicsOnDuplicateAlias(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustNew(entry(Potato, 25, "aloo"), entry(Onion, 20, "aloo"))
}

func TestLookupAlias(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		alias string
		want  Key
		ok    bool
	}{
		{"aloo", Potato, true},
		{"ALOO", Potato, true},
		{" Tamatar ", Tomato, true},
		{"टमाटर", Tomato, true},
		{"प्याज", Onion, true},
		{"mango", "", false},
	}
	for _, tt := range tests {
		e, ok := c.LookupAlias(tt.alias)
		if ok != tt.ok || e.Key != tt.want {
			t.Errorf("LookupAlias(%q) = %q, %v; want %q, %v", tt.alias, e.Key, ok, tt.want, tt.ok)
		}
	}
}

func TestAliasesKeepDeclarationOrder(t *testing.T) {
	c := MustNew(entry(Potato, 25, "Aloo", "आलू"), entry(Onion, 20, "pyaz"))
	got := c.Aliases()
	want := []Alias{
		{Text: "aloo", Latin: true, Entry: 0, Order: 0},
		{Text: "आलू", Latin: false, Entry: 0, Order: 1},
		{Text: "pyaz", Latin: true, Entry: 1, Order: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("Aliases() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Aliases()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFoldAliasLeavesNativeScript(t *testing.T) {
	if got := FoldAlias("  TaMaTaR टमाटर "); got != "tamatar टमाटर" {
		t.Fatalf("FoldAlias() = %q", got)
	}
}

func TestSnapshotOverrides(t *testing.T) {
	c := MustDefault()
	base := Static(c)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	next := WithOverrides(base, map[Key]decimal.Decimal{
		Tomato:    decimal.RequireFromString("30.5"),
		Onion:     decimal.Zero,
		Key("xx"): decimal.NewFromInt(1),
	}, ProvenanceLive, at)

	if p, _ := next.Price(Tomato); !p.Equal(decimal.RequireFromString("30.5")) {
		t.Errorf("tomato = %s, want 30.5", p)
	}
	if p, _ := next.Price(Onion); !p.Equal(decimal.NewFromInt(20)) {
		t.Errorf("onion = %s, want unchanged 20", p)
	}
	if _, ok := next.Price(Key("xx")); ok {
		t.Error("unknown key should not be added")
	}
	if p, _ := base.Price(Tomato); !p.Equal(decimal.NewFromInt(32)) {
		t.Errorf("base mutated: tomato = %s", p)
	}
	if next.Provenance() != ProvenanceLive || !next.TakenAt().Equal(at) {
		t.Errorf("provenance = %s at %v", next.Provenance(), next.TakenAt())
	}
}

func TestSnapshotStoreReplaceIsWholesale(t *testing.T) {
	c := MustDefault()
	static := Static(c)
	live := WithOverrides(static, map[Key]decimal.Decimal{
		Potato: decimal.NewFromInt(26),
		Tomato: decimal.NewFromInt(33),
	}, ProvenanceLive, time.Now())
	store := NewSnapshotStore(static)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				store.Replace(live)
			} else {
				store.Replace(static)
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		s := store.Load()
		p, _ := s.Price(Potato)
		tm, _ := s.Price(Tomato)
		// Both prices must come from the same snapshot.
		if p.Equal(decimal.NewFromInt(26)) != tm.Equal(decimal.NewFromInt(33)) {
			t.Fatalf("torn read: potato=%s tomato=%s", p, tm)
		}
	}
	close(stop)
	wg.Wait()
}
