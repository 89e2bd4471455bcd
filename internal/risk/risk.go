// Package risk implements the order risk scoring pipeline: it normalizes
// checkout payloads, queries the upstream scoring API, caches decisions, and
// maps the resulting tier onto a cash-on-delivery policy.
package risk

// Tier buckets an order's risk. Anything the upstream sends outside this set
// is coerced to TierMedium.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ValidTier reports whether t is one of the known tiers.
func ValidTier(t Tier) bool {
	return t == TierLow || t == TierMedium || t == TierHigh
}

// Customer identifies the buyer in a scoring request.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Shipping is the delivery destination in a scoring request.
type Shipping struct {
	Address string `json:"address"`
	Pincode string `json:"pincode"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Item is a single line item. Qty is floored at 1 and Price at 0 during
// normalization.
type Item struct {
	SKU      string  `json:"sku"`
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// OrderInfo carries the order-level scoring inputs.
type OrderInfo struct {
	Total float64 `json:"total"`
	Items []Item  `json:"items"`
}

// Request is the canonical scoring request sent upstream. Every field is
// present even when the caller omitted it; normalization coerces, it never
// fails. Context is an opaque passthrough bag.
type Request struct {
	Customer Customer       `json:"customer"`
	Shipping Shipping       `json:"shipping"`
	Order    OrderInfo      `json:"order"`
	Context  map[string]any `json:"context"`
}

// Decision is the atomic scoring result. There are no partial decisions;
// every failure mode collapses to Neutral with the cause in Reason.
type Decision struct {
	Tier   Tier   `json:"tier"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Neutral is the fixed fallback decision used whenever the upstream cannot
// produce a usable verdict.
func Neutral(reason string) Decision {
	return Decision{Tier: TierMedium, Score: 50, Reason: reason}
}
