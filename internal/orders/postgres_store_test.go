package orders

import (
	"context"
	"testing"
	"time"

	"github.com/codguard/codguard/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	o := &Order{
		ID:        1001,
		Status:    StatusPending,
		Total:     74.25,
		Currency:  "EUR",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Customer:  Customer{ID: 3, Email: "pg@example.test", Phone: "+355"},
		Meta:      map[string]string{"source": "storefront"},
	}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, 1001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusPending || got.Customer.Email != "pg@example.test" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Meta["source"] != "storefront" {
		t.Errorf("meta round trip mismatch: %v", got.Meta)
	}

	if err := store.UpdateStatus(ctx, 1001, StatusCancelled); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := store.SetMeta(ctx, 1001, "risk_status", "fraud"); err != nil {
		t.Fatalf("set meta: %v", err)
	}

	got, _ = store.Get(ctx, 1001)
	if got.Status != StatusCancelled || got.Meta["risk_status"] != "fraud" {
		t.Errorf("mutations not persisted: %+v", got)
	}

	if _, err := store.Get(ctx, 9999); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if err := store.UpdateStatus(ctx, 9999, StatusCancelled); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound on update, got %v", err)
	}
	if err := store.SetMeta(ctx, 9999, "k", "v"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound on set meta, got %v", err)
	}
}
