package risk

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/logging"
	"github.com/codguard/codguard/internal/settings"
)

// Handler serves the shopper-facing risk evaluation endpoint.
type Handler struct {
	client *Client
	store  settings.Store
}

func NewHandler(client *Client, store settings.Store) *Handler {
	return &Handler{client: client, store: store}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/evaluate", h.Evaluate)
}

type evaluateResponse struct {
	Tier   Tier          `json:"tier"`
	Score  int           `json:"score"`
	Reason string        `json:"reason"`
	COD    CODAssessment `json:"cod"`
}

// Evaluate handles POST /v1/risk/evaluate. It always answers 200: a shopper
// must never see a checkout error because scoring degraded. Unparseable
// bodies are treated as an empty payload and scored like any other.
func (h *Handler) Evaluate(c *gin.Context) {
	ctx := c.Request.Context()

	var params Params
	if err := c.ShouldBindJSON(&params); err != nil {
		logging.L(ctx).Debug("unparseable evaluate payload, scoring empty request", "error", err)
		params = Params{}
	}

	// Settings are read fresh on every evaluation so admin changes apply
	// without a restart.
	s, err := h.store.Load(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to load settings", "error", err)
		d := Neutral("Settings unavailable")
		c.JSON(http.StatusOK, evaluateResponse{
			Tier: d.Tier, Score: d.Score, Reason: d.Reason,
			COD: AssessCOD(d, settings.Defaults()),
		})
		return
	}

	d := h.client.Evaluate(ctx, params, s)
	c.JSON(http.StatusOK, evaluateResponse{
		Tier: d.Tier, Score: d.Score, Reason: d.Reason,
		COD: AssessCOD(d, s),
	})
}
