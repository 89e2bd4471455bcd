// Package orders holds the order records the gateway acts on. Orders are
// usually mirrored in from the storefront at checkout time; the risk pipeline
// annotates them and the fraud webhook may cancel them.
package orders

import (
	"context"
	"errors"
	"time"
)

// Order statuses. Transitions are not enforced beyond what handlers check;
// the storefront remains the source of truth for fulfilment state.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusRefunded   = "refunded"
)

var ErrOrderNotFound = errors.New("order not found")

// Customer is the buyer snapshot attached to an order.
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order is a storefront order as the gateway sees it. Meta carries
// gateway-written annotations such as the upstream risk verdict.
type Order struct {
	ID        int64             `json:"id"`
	Status    string            `json:"status"`
	Total     float64           `json:"total"`
	Currency  string            `json:"currency"`
	CreatedAt time.Time         `json:"created_at"`
	Customer  Customer          `json:"customer"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Store persists orders.
type Store interface {
	// Create inserts a new order. The caller assigns the ID; storefront
	// order IDs are preserved so webhook callbacks can reference them.
	Create(ctx context.Context, o *Order) error
	// Get returns the order with the given ID, or ErrOrderNotFound.
	Get(ctx context.Context, id int64) (*Order, error)
	// UpdateStatus sets the order's status. Returns ErrOrderNotFound if
	// the order does not exist.
	UpdateStatus(ctx context.Context, id int64, status string) error
	// SetMeta writes a single metadata key. Writing the same key again
	// overwrites the previous value.
	SetMeta(ctx context.Context, id int64, key, value string) error
}
