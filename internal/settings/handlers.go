package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/security"
)

// Handler provides the admin settings endpoints. Authentication and
// authorization are delegated to the host platform in front of this service.
type Handler struct {
	store Store
}

// NewHandler creates a settings handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up the admin settings routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/settings", h.GetSettings)
	r.PUT("/admin/settings", h.UpdateSettings)
}

// GetSettings handles GET /v1/admin/settings.
// Secrets are redacted; the admin UI only needs to know whether they are set.
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.store.Load(c.Request.Context())
	if err != nil {
		logging.L(c.Request.Context()).Error("failed to load settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": gin.H{
			"api_url":            s.APIURL,
			"api_key_set":        s.APIKey != "",
			"timeout":            s.Timeout,
			"cache_ttl":          s.CacheTTL,
			"low_threshold":      s.LowThreshold,
			"high_threshold":     s.HighThreshold,
			"cod_action":         s.CODAction,
			"webhook_url":        s.WebhookURL,
			"webhook_key_set":    s.WebhookKey != "",
			"webhook_secret_set": s.WebhookSecret != "",
		},
	})
}

// UpdateSettings handles PUT /v1/admin/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_settings",
			"message": err.Error(),
		})
		return
	}

	// Outbound URLs are admin-supplied; refuse anything pointing inward.
	for _, u := range []string{req.APIURL, req.WebhookURL} {
		if u == "" {
			continue
		}
		if err := security.ValidateEndpointURL(u); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_url",
				"message": err.Error(),
			})
			return
		}
	}

	if err := h.store.Save(c.Request.Context(), &req); err != nil {
		logging.L(c.Request.Context()).Error("failed to save settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to save settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
