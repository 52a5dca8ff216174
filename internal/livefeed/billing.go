package livefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	billingFetchLimit = 20
	billingMaxItems   = 8
)

// BillingItem is a priced line a vendor can add to a bill.
type BillingItem struct {
	Name   string      `json:"name"`
	Price  json.Number `json:"price"` // rupees per quintal
	Market string      `json:"market,omitempty"`
	State  string      `json:"state,omitempty"`
}

// BillingItems returns up to eight items priced from the live listing, or
// the fixed fallback items when the listing is unavailable. Rows whose
// modal price is not a number are left out.
func (f *Feed) BillingItems(ctx context.Context) []BillingItem {
	records, err := f.records(ctx, billingFetchLimit)
	if err != nil {
		slog.Warn("billing price fetch failed, using fallback", "error", err)
		return FallbackBilling()
	}
	if len(records) > billingMaxItems {
		records = records[:billingMaxItems]
	}
	items := make([]BillingItem, 0, len(records))
	for _, r := range records {
		price, err := decimal.NewFromString(strings.TrimSpace(r.ModalPrice))
		if err != nil {
			slog.Debug("skipping billing row", "commodity", r.Commodity, "modal_price", r.ModalPrice)
			continue
		}
		items = append(items, BillingItem{
			Name:   r.Commodity,
			Price:  json.Number(price.String()),
			Market: r.Market,
			State:  r.State,
		})
	}
	if len(items) == 0 {
		return FallbackBilling()
	}
	return items
}
