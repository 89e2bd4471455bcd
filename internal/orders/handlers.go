package orders

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/validation"
)

// Emitter receives order lifecycle events. The webhooks package provides the
// production implementation; handlers only see this interface.
type Emitter interface {
	OrderCreated(ctx context.Context, o *Order)
	OrderCompleted(ctx context.Context, o *Order)
	OrderCancelled(ctx context.Context, o *Order)
	OrderRefunded(ctx context.Context, o *Order)
}

// Handler serves the order endpoints.
type Handler struct {
	store   Store
	emitter Emitter
}

func NewHandler(store Store, emitter Emitter) *Handler {
	return &Handler{store: store, emitter: emitter}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/status", h.UpdateStatus)
}

type createOrderRequest struct {
	ID       int64    `json:"id" binding:"required"`
	Status   string   `json:"status"`
	Total    float64  `json:"total"`
	Currency string   `json:"currency"`
	Customer Customer `json:"customer"`
}

// CreateOrder handles POST /v1/orders. Storefronts mirror orders in at
// checkout so the fraud webhook has something to act on later.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}
	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_order",
			"message": "Order ID must be positive",
		})
		return
	}
	if req.Status == "" {
		req.Status = StatusPending
	}
	if !ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": "Unknown order status",
		})
		return
	}
	if req.Total < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_order",
			"message": "Order total must not be negative",
		})
		return
	}
	if errs := validation.Validate(
		validation.MaxLength("currency", req.Currency, 8),
		validation.MaxLength("customer.email", req.Customer.Email, validation.MaxFieldLength),
		validation.MaxLength("customer.phone", req.Customer.Phone, 32),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_order",
			"message": errs.Error(),
		})
		return
	}

	o := &Order{
		ID:        req.ID,
		Status:    req.Status,
		Total:     req.Total,
		Currency:  req.Currency,
		CreatedAt: time.Now().UTC(),
		Customer:  req.Customer,
	}
	if err := h.store.Create(c.Request.Context(), o); err != nil {
		logging.L(c.Request.Context()).Error("failed to create order", "order_id", o.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create order",
		})
		return
	}

	if h.emitter != nil {
		h.emitter.OrderCreated(c.Request.Context(), o)
	}

	c.JSON(http.StatusCreated, o)
}

// GetOrder handles GET /v1/orders/:id.
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_order_id",
			"message": "Order ID must be a positive integer",
		})
		return
	}

	o, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "order_not_found",
			"message": "Order not found",
		})
		return
	}
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to load order", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load order",
		})
		return
	}

	c.JSON(http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles POST /v1/orders/:id/status and emits the matching
// lifecycle event.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_order_id",
			"message": "Order ID must be a positive integer",
		})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": "Unknown order status",
		})
		return
	}

	if err := h.store.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "order_not_found",
				"message": "Order not found",
			})
			return
		}
		logging.L(c.Request.Context()).Error("failed to update order status", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update order",
		})
		return
	}

	o, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to reload order", "order_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load order",
		})
		return
	}

	if h.emitter != nil {
		switch req.Status {
		case StatusCompleted:
			h.emitter.OrderCompleted(c.Request.Context(), o)
		case StatusCancelled:
			h.emitter.OrderCancelled(c.Request.Context(), o)
		case StatusRefunded:
			h.emitter.OrderRefunded(c.Request.Context(), o)
		}
	}

	c.JSON(http.StatusOK, o)
}
