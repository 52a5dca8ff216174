package livefeed

// fallbackRecords are served whenever the upstream listing is unavailable.
var fallbackRecords = [...]Record{
	{Commodity: "Potato (Demo)", Market: "Azadpur", State: "Delhi", ModalPrice: "2500"},
	{Commodity: "Onion (Demo)", Market: "Lasalgaon", State: "Maharashtra", ModalPrice: "2200"},
	{Commodity: "Tomato (Demo)", Market: "Kolar", State: "Karnataka", ModalPrice: "3000"},
}

// fallbackBilling is served whenever billing items cannot be fetched.
var fallbackBilling = [...]BillingItem{
	{Name: "Potato", Price: "2500"},
	{Name: "Onion", Price: "2200"},
	{Name: "Tomato", Price: "3000"},
	{Name: "Rice", Price: "4800"},
	{Name: "Dal", Price: "8500"},
}

// FallbackRecords returns a fresh copy of the fixed fallback listing.
func FallbackRecords() []Record {
	out := make([]Record, len(fallbackRecords))
	copy(out, fallbackRecords[:])
	return out
}

// FallbackBilling returns a fresh copy of the fixed fallback billing items.
func FallbackBilling() []BillingItem {
	out := make([]BillingItem, len(fallbackBilling))
	copy(out, fallbackBilling[:])
	return out
}
