package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codguard/codguard/internal/config"
	"github.com/codguard/codguard/internal/orders"
	"github.com/codguard/codguard/internal/settings"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:         "8080",
		Env:          "development",
		LogLevel:     "error",
		RateLimitRPM: 10000,
	}
}

func newTestServer(t *testing.T) (*Server, *settings.MemoryStore, *orders.MemoryStore) {
	t.Helper()
	settingsStore := settings.NewMemoryStore()
	orderStore := orders.NewMemoryStore()
	srv, err := New(testConfig(),
		WithSettingsStore(settingsStore),
		WithOrderStore(orderStore),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, settingsStore, orderStore
}

func TestHealthEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/health", "/health/live"} {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}

	// Readiness flips only after Run.
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before startup completes, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "codguard_") {
		t.Error("expected codguard metrics in exposition")
	}
}

func TestEvaluateFlowThroughRouter(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tier":"low","score":10,"reason":"clean"}`))
	}))
	defer upstream.Close()

	srv, settingsStore, _ := newTestServer(t)
	s := settings.Defaults()
	s.APIURL = upstream.URL
	if err := settingsStore.Save(context.Background(), s); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/risk/evaluate",
		strings.NewReader(`{"name":"Ada","order_total":25.0}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["tier"] != "low" {
		t.Errorf("expected low tier, got %v", resp["tier"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}
}

func TestWebhookFlowThroughRouter(t *testing.T) {
	srv, settingsStore, orderStore := newTestServer(t)

	s := settings.Defaults()
	s.WebhookSecret = "whsec"
	_ = settingsStore.Save(context.Background(), s)
	_ = orderStore.Create(context.Background(), &orders.Order{ID: 77, Status: orders.StatusProcessing})

	body := []byte(`{"order_id":77,"status":"fraud"}`)
	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/webhooks/risk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature-256", sig)
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	o, err := orderStore.Get(context.Background(), 77)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != orders.StatusCancelled {
		t.Errorf("fraud webhook must cancel the order, got %q", o.Status)
	}
}

func TestUnknownRoute404(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
