package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/codguard/codguard/internal/orders"
	"github.com/codguard/codguard/internal/settings"
)

const testSecret = "whsec_test"

type cancelRecorder struct {
	cancelled []int64
}

func (e *cancelRecorder) OrderCreated(context.Context, *orders.Order)   {}
func (e *cancelRecorder) OrderCompleted(context.Context, *orders.Order) {}
func (e *cancelRecorder) OrderRefunded(context.Context, *orders.Order)  {}
func (e *cancelRecorder) OrderCancelled(_ context.Context, o *orders.Order) {
	e.cancelled = append(e.cancelled, o.ID)
}

func setupInbound(t *testing.T) (*gin.Engine, *orders.MemoryStore, *cancelRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	settingsStore := settings.NewMemoryStore()
	s := settings.Defaults()
	s.WebhookSecret = testSecret
	if err := settingsStore.Save(context.Background(), s); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	orderStore := orders.NewMemoryStore()
	rec := &cancelRecorder{}
	r := gin.New()
	NewInboundHandler(orderStore, settingsStore, rec).RegisterRoutes(r.Group("/v1"))
	return r, orderStore, rec
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/webhooks/risk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestInbound_RejectsUnsigned(t *testing.T) {
	r, _, _ := setupInbound(t)

	body := []byte(`{"order_id":1,"status":"review"}`)
	if w := postWebhook(r, body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing signature: expected 401, got %d", w.Code)
	}
	if w := postWebhook(r, body, sign(body, "wrong")); w.Code != http.StatusUnauthorized {
		t.Errorf("bad signature: expected 401, got %d", w.Code)
	}
}

func TestInbound_RejectsNoSecretConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewInboundHandler(orders.NewMemoryStore(), settings.NewMemoryStore(), &cancelRecorder{}).RegisterRoutes(r.Group("/v1"))

	body := []byte(`{"order_id":1,"status":"ok"}`)
	if w := postWebhook(r, body, sign(body, "anything")); w.Code != http.StatusUnauthorized {
		t.Errorf("unconfigured secret must fail closed, got %d", w.Code)
	}
}

func TestInbound_ValidatesPayload(t *testing.T) {
	r, _, _ := setupInbound(t)

	for _, raw := range []string{
		`not json`,
		`{"status":"ok"}`,
		`{"order_id":0,"status":"ok"}`,
		`{"order_id":-5,"status":"ok"}`,
		`{"order_id":7}`,
		`{"order_id":7,"status":""}`,
	} {
		body := []byte(raw)
		if w := postWebhook(r, body, sign(body, testSecret)); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", raw, w.Code)
		}
	}
}

func TestInbound_UnknownOrder(t *testing.T) {
	r, _, _ := setupInbound(t)

	body := []byte(`{"order_id":404,"status":"review"}`)
	if w := postWebhook(r, body, sign(body, testSecret)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestInbound_WritesMetadata(t *testing.T) {
	r, store, rec := setupInbound(t)
	ctx := context.Background()
	_ = store.Create(ctx, &orders.Order{ID: 10, Status: orders.StatusProcessing})

	body := []byte(`{"order_id":10,"status":"review","note":"manual check"}`)
	w := postWebhook(r, body, sign(body, testSecret))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	o, _ := store.Get(ctx, 10)
	if o.Meta[MetaRiskStatus] != "review" {
		t.Errorf("expected risk status meta, got %q", o.Meta[MetaRiskStatus])
	}
	if o.Meta[MetaRiskPayload] != string(body) {
		t.Errorf("raw payload must be persisted verbatim, got %q", o.Meta[MetaRiskPayload])
	}
	if o.Status != orders.StatusProcessing {
		t.Errorf("non-fraud status must not change order state, got %q", o.Status)
	}
	if len(rec.cancelled) != 0 {
		t.Errorf("non-fraud status must not emit cancellation, got %v", rec.cancelled)
	}
}

func TestInbound_FraudCancelsOrder(t *testing.T) {
	r, store, rec := setupInbound(t)
	ctx := context.Background()
	_ = store.Create(ctx, &orders.Order{ID: 11, Status: orders.StatusProcessing})

	body := []byte(`{"order_id":11,"status":"fraud"}`)
	w := postWebhook(r, body, sign(body, testSecret))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	o, _ := store.Get(ctx, 11)
	if o.Status != orders.StatusCancelled {
		t.Errorf("fraud status must cancel the order, got %q", o.Status)
	}
	if o.Meta[MetaCancelNote] == "" {
		t.Error("cancellation must record an audit reason")
	}
	if len(rec.cancelled) != 1 || rec.cancelled[0] != 11 {
		t.Errorf("fraud cancellation must emit order.cancelled once, got %v", rec.cancelled)
	}
}

func TestInbound_FraudIdempotentOnCancelledOrder(t *testing.T) {
	r, store, rec := setupInbound(t)
	ctx := context.Background()
	_ = store.Create(ctx, &orders.Order{ID: 12, Status: orders.StatusCancelled})

	body := []byte(`{"order_id":12,"status":"fraud"}`)
	for i := 0; i < 2; i++ {
		if w := postWebhook(r, body, sign(body, testSecret)); w.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200 on already-cancelled order, got %d", i+1, w.Code)
		}
	}

	o, _ := store.Get(ctx, 12)
	if o.Status != orders.StatusCancelled {
		t.Errorf("order must stay cancelled, got %q", o.Status)
	}
	if len(rec.cancelled) != 0 {
		t.Errorf("already-cancelled order must not re-emit, got %v", rec.cancelled)
	}
}
