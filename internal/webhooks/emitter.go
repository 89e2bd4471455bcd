package webhooks

import (
	"context"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/metrics"
	"github.com/codguard/codguard/internal/orders"
	"github.com/codguard/codguard/internal/settings"
)

// Emitter fires order lifecycle notifications without blocking the caller.
// Delivery failures are counted and logged, never propagated: order
// processing does not depend on the risk system being up.
type Emitter struct {
	notifier *Notifier
	settings settings.Store
}

func NewEmitter(notifier *Notifier, settingsStore settings.Store) *Emitter {
	return &Emitter{notifier: notifier, settings: settingsStore}
}

func (e *Emitter) OrderCreated(ctx context.Context, o *orders.Order)   { e.emit(ctx, o, EventOrderCreated) }
func (e *Emitter) OrderCompleted(ctx context.Context, o *orders.Order) { e.emit(ctx, o, EventOrderCompleted) }
func (e *Emitter) OrderCancelled(ctx context.Context, o *orders.Order) { e.emit(ctx, o, EventOrderCancelled) }
func (e *Emitter) OrderRefunded(ctx context.Context, o *orders.Order)  { e.emit(ctx, o, EventOrderRefunded) }

func (e *Emitter) emit(ctx context.Context, o *orders.Order, event string) {
	// Detach from the request so delivery survives the response being sent.
	// Request-scoped values (request ID) stay attached for log correlation.
	ctx = context.WithoutCancel(ctx)
	snapshot := *o

	go func() {
		log := logging.L(ctx)

		s, err := e.settings.Load(ctx)
		if err != nil {
			metrics.NotifyTotal.WithLabelValues(event, "error").Inc()
			log.Error("failed to load settings for notification", "event", event, "error", err)
			return
		}
		if s.WebhookURL == "" {
			metrics.NotifyTotal.WithLabelValues(event, "skipped").Inc()
			return
		}

		if err := e.notifier.Notify(ctx, s.WebhookURL, s.WebhookKey, &snapshot, event); err != nil {
			metrics.NotifyTotal.WithLabelValues(event, "error").Inc()
			log.Warn("notification delivery failed", "event", event, "order_id", snapshot.ID, "error", err)
			return
		}
		metrics.NotifyTotal.WithLabelValues(event, "ok").Inc()
	}()
}
