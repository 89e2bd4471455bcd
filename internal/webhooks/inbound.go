package webhooks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/metrics"
	"github.com/codguard/codguard/internal/orders"
	"github.com/codguard/codguard/internal/settings"
	"github.com/codguard/codguard/internal/traces"
)

// SignatureHeader is the header the risk system signs callbacks with.
const SignatureHeader = "X-Hub-Signature-256"

// Order metadata keys written by the inbound handler.
const (
	MetaRiskStatus  = "risk_status"
	MetaRiskPayload = "risk_payload"
	MetaCancelNote  = "cancel_reason"
)

// StatusFraud is the one inbound status that triggers a state transition.
const StatusFraud = "fraud"

const fraudCancelReason = "Cancelled automatically: fraud flagged by risk system"

// InboundHandler receives signed callbacks from the risk system and applies
// them to the order store. Fraud cancellations go through the emitter so the
// order.cancelled notification fires like any other cancellation.
type InboundHandler struct {
	orders   orders.Store
	settings settings.Store
	emitter  orders.Emitter
}

func NewInboundHandler(orderStore orders.Store, settingsStore settings.Store, emitter orders.Emitter) *InboundHandler {
	return &InboundHandler{orders: orderStore, settings: settingsStore, emitter: emitter}
}

func (h *InboundHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/risk", h.Handle)
}

type inboundPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// Handle processes one signed callback. The signature is checked against the
// raw body before any parsing happens; an unsigned payload never reaches the
// JSON decoder.
func (h *InboundHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.L(ctx)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Failed to read request body",
		})
		return
	}

	s, err := h.settings.Load(ctx)
	if err != nil {
		log.Error("failed to load settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Configuration unavailable",
		})
		return
	}

	if !VerifySignature(body, c.GetHeader(SignatureHeader), s.WebhookSecret) {
		metrics.WebhookVerifyFailuresTotal.Inc()
		log.Warn("rejected webhook with bad signature", "remote", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_signature",
			"message": "Signature verification failed",
		})
		return
	}

	var payload inboundPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.OrderID <= 0 || payload.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_payload",
			"message": "Payload must contain a positive order_id and a non-empty status",
		})
		return
	}

	ctx, span := traces.StartSpan(ctx, "webhooks.inbound",
		traces.OrderID(payload.OrderID), traces.Event(payload.Status))
	defer span.End()

	order, err := h.orders.Get(ctx, payload.OrderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "order_not_found",
			"message": "Order not found",
		})
		return
	}
	if err != nil {
		log.Error("failed to load order", "order_id", payload.OrderID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load order",
		})
		return
	}

	// Metadata is written for every status value. Re-delivery of the same
	// event rewrites identical values, which is harmless.
	if err := h.orders.SetMeta(ctx, order.ID, MetaRiskStatus, payload.Status); err != nil {
		log.Error("failed to write risk status", "order_id", order.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update order",
		})
		return
	}
	if err := h.orders.SetMeta(ctx, order.ID, MetaRiskPayload, string(body)); err != nil {
		log.Error("failed to write risk payload", "order_id", order.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update order",
		})
		return
	}

	if payload.Status == StatusFraud && order.Status != orders.StatusCancelled {
		if err := h.orders.UpdateStatus(ctx, order.ID, orders.StatusCancelled); err != nil {
			log.Error("failed to cancel order", "order_id", order.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to cancel order",
			})
			return
		}
		if err := h.orders.SetMeta(ctx, order.ID, MetaCancelNote, fraudCancelReason); err != nil {
			log.Error("failed to write cancel reason", "order_id", order.ID, "error", err)
		}
		metrics.OrdersCancelledTotal.Inc()
		log.Info("order cancelled by fraud webhook", "order_id", order.ID)

		if h.emitter != nil {
			order.Status = orders.StatusCancelled
			h.emitter.OrderCancelled(ctx, order)
		}
	}

	metrics.WebhookReceivedTotal.WithLabelValues(payload.Status).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
