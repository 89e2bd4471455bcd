package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists orders in PostgreSQL. Risk annotations live in a
// jsonb meta column so new keys never need a schema change.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the orders table if it does not exist. Production
// deployments run the versioned migrations instead; this keeps tests and
// dev setups self-contained.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id BIGINT PRIMARY KEY,
			status TEXT NOT NULL,
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			customer_id BIGINT NOT NULL DEFAULT 0,
			customer_email TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			meta JSONB NOT NULL DEFAULT '{}'::jsonb
		)`)
	if err != nil {
		return fmt.Errorf("migrate orders: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, o *Order) error {
	meta, err := json.Marshal(o.Meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if o.Meta == nil {
		meta = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, status, total, currency, created_at, customer_id, customer_email, customer_phone, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.Status, o.Total, o.Currency, o.CreatedAt,
		o.Customer.ID, o.Customer.Email, o.Customer.Phone, meta)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Order, error) {
	var (
		o    Order
		meta []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, status, total, currency, created_at, customer_id, customer_email, customer_phone, meta
		FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.Status, &o.Total, &o.Currency, &o.CreatedAt,
		&o.Customer.ID, &o.Customer.Email, &o.Customer.Phone, &meta)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	if err := json.Unmarshal(meta, &o.Meta); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &o, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *PostgresStore) SetMeta(ctx context.Context, id int64, key, value string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET meta = meta || jsonb_build_object($2::text, $3::text)
		WHERE id = $1`, id, key, value)
	if err != nil {
		return fmt.Errorf("set order meta: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set order meta: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
