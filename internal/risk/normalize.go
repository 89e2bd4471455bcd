package risk

import (
	"encoding/json"
	"strconv"

	"github.com/codguard/codguard/internal/validation"
)

// Params is the loosely typed checkout payload as the storefront sends it.
// Keys are flat; anything missing gets a type-correct zero value.
type Params map[string]any

// Normalize shapes untrusted checkout data into a complete Request. It never
// fails: bad values are coerced, unknown item fields are dropped, and the
// context bag passes through untouched.
func Normalize(p Params) Request {
	req := Request{
		Customer: Customer{
			Name:  cleanString(p["name"]),
			Email: cleanString(p["email"]),
			Phone: cleanString(p["phone"]),
		},
		Shipping: Shipping{
			Address: cleanString(p["address"]),
			Pincode: cleanString(p["pincode"]),
			City:    cleanString(p["city"]),
			State:   cleanString(p["state"]),
			Country: cleanString(p["country"]),
		},
		Order: OrderInfo{
			Total: floorFloat(p["order_total"], 0),
			Items: normalizeItems(p["items"]),
		},
		Context: map[string]any{},
	}
	if ctx, ok := p["context"].(map[string]any); ok {
		req.Context = ctx
	}
	return req
}

func normalizeItems(v any) []Item {
	raw, ok := v.([]any)
	if !ok {
		return []Item{}
	}
	items := make([]Item, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, Item{
			SKU:      cleanString(m["sku"]),
			Qty:      floorInt(m["qty"], 1),
			Price:    floorFloat(m["price"], 0),
			Category: cleanString(m["category"]),
		})
	}
	return items
}

func cleanString(v any) string {
	s, _ := v.(string)
	return validation.SanitizeString(s, validation.MaxFieldLength)
}

// floorInt coerces v to an int no smaller than min. JSON numbers arrive as
// float64; string digits are tolerated because storefront form data often
// sends them that way.
func floorInt(v any, min int) int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = int(i)
		}
	case string:
		if i, err := strconv.Atoi(t); err == nil {
			n = i
		}
	}
	if n < min {
		return min
	}
	return n
}

func floorFloat(v any, min float64) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		if x, err := t.Float64(); err == nil {
			f = x
		}
	case string:
		if x, err := strconv.ParseFloat(t, 64); err == nil {
			f = x
		}
	}
	if f < min {
		return min
	}
	return f
}
