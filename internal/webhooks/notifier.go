package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codguard/codguard/internal/orders"
)

// notifyTimeout bounds every outbound delivery. Order processing must never
// wait on the risk system longer than this.
const notifyTimeout = 5 * time.Second

// Order lifecycle event names as sent to the risk system.
const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
	EventOrderRefunded  = "order.refunded"
)

// Notifier posts order lifecycle snapshots to the configured webhook URL.
type Notifier struct {
	httpClient *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{httpClient: &http.Client{Timeout: notifyTimeout}}
}

type notifyPayload struct {
	Event    string  `json:"event"`
	OrderID  int64   `json:"order_id"`
	Status   string  `json:"status"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Created  string  `json:"created"`
	Customer struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
}

// Notify delivers one event. A missing webhook URL is a silent no-op; any
// delivery failure is returned for logging but carries no retry semantics.
func (n *Notifier) Notify(ctx context.Context, webhookURL, webhookKey string, o *orders.Order, event string) error {
	if webhookURL == "" {
		return nil
	}

	p := notifyPayload{
		Event:    event,
		OrderID:  o.ID,
		Status:   o.Status,
		Total:    o.Total,
		Currency: o.Currency,
		Created:  o.CreatedAt.UTC().Format(time.RFC3339),
	}
	p.Customer.ID = o.Customer.ID
	p.Customer.Email = o.Customer.Email
	p.Customer.Phone = o.Customer.Phone

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if webhookKey != "" {
		req.Header.Set("Authorization", "Bearer "+webhookKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver %s: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("deliver %s: status %d", event, resp.StatusCode)
	}
	return nil
}
