package otp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/whatsapp"
)

// Handler serves the COD verification endpoints.
type Handler struct {
	manager *Manager
	sender  *whatsapp.Client
}

func NewHandler(manager *Manager, sender *whatsapp.Client) *Handler {
	return &Handler{manager: manager, sender: sender}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/otp/send", h.Send)
	r.POST("/otp/verify", h.Verify)
}

type sendRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// Send issues a code and delivers it over WhatsApp. The code never appears
// in the response.
func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Phone number is required",
		})
		return
	}

	if !h.sender.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "delivery_unavailable",
			"message": "Verification delivery is not configured",
		})
		return
	}

	code, err := h.manager.Issue(req.Phone)
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to issue verification code", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to issue verification code",
		})
		return
	}

	msg := "Your order verification code is " + code + ". It expires in 5 minutes."
	if err := h.sender.SendMessage(c.Request.Context(), req.Phone, msg); err != nil {
		logging.L(c.Request.Context()).Warn("verification code delivery failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "delivery_failed",
			"message": "Failed to deliver verification code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

type verifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// Verify checks a submitted code. The response never distinguishes between
// unknown, expired, and wrong codes.
func (h *Handler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Phone number and code are required",
		})
		return
	}

	if !h.manager.Verify(req.Phone, req.Code) {
		c.JSON(http.StatusOK, gin.H{"verified": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}
