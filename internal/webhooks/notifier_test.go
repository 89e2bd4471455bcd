package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/codguard/codguard/internal/orders"
	"github.com/codguard/codguard/internal/settings"
)

func testOrder() *orders.Order {
	return &orders.Order{
		ID:        42,
		Status:    orders.StatusCompleted,
		Total:     199.99,
		Currency:  "USD",
		CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Customer:  orders.Customer{ID: 7, Email: "buyer@example.test", Phone: "+15550100"},
	}
}

func TestNotify_PayloadShape(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	err := NewNotifier().Notify(context.Background(), srv.URL, "whk_live", testOrder(), EventOrderCompleted)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if gotAuth != "Bearer whk_live" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["event"] != EventOrderCompleted {
		t.Errorf("event = %v", gotBody["event"])
	}
	if gotBody["order_id"] != float64(42) {
		t.Errorf("order_id = %v", gotBody["order_id"])
	}
	if gotBody["created"] != "2026-03-01T10:30:00Z" {
		t.Errorf("created must be ISO-8601 UTC, got %v", gotBody["created"])
	}
	customer, _ := gotBody["customer"].(map[string]any)
	if customer["email"] != "buyer@example.test" {
		t.Errorf("customer = %v", gotBody["customer"])
	}
}

func TestNotify_NoURLIsNoOp(t *testing.T) {
	if err := NewNotifier().Notify(context.Background(), "", "key", testOrder(), EventOrderCreated); err != nil {
		t.Errorf("empty URL must be a silent no-op, got %v", err)
	}
}

func TestNotify_BadStatusReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if err := NewNotifier().Notify(context.Background(), srv.URL, "", testOrder(), EventOrderCancelled); err == nil {
		t.Error("non-2xx delivery must report an error")
	}
}

func TestEmitter_FireAndForget(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
	}))
	defer srv.Close()

	settingsStore := settings.NewMemoryStore()
	s := settings.Defaults()
	s.WebhookURL = srv.URL
	if err := settingsStore.Save(context.Background(), s); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	em := NewEmitter(NewNotifier(), settingsStore)
	em.OrderCancelled(context.Background(), testOrder())

	select {
	case body := <-received:
		if body["event"] != EventOrderCancelled {
			t.Errorf("expected cancelled event, got %v", body["event"])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("notification never arrived")
	}
}

func TestEmitter_FailureDoesNotBlock(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	settingsStore := settings.NewMemoryStore()
	s := settings.Defaults()
	s.WebhookURL = srv.URL
	_ = settingsStore.Save(context.Background(), s)

	em := NewEmitter(NewNotifier(), settingsStore)

	done := make(chan struct{})
	go func() {
		em.OrderCreated(context.Background(), testOrder())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit must return immediately even when delivery fails")
	}
}
