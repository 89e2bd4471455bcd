package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists settings as a single JSONB row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed settings store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the settings table.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gateway_settings (
			id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (p *PostgresStore) Load(ctx context.Context) (*Settings, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT payload FROM gateway_settings WHERE id = 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s := Defaults()
	if err := json.Unmarshal(payload, s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Settings) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO gateway_settings (id, payload, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET payload = $1, updated_at = NOW()
	`, payload)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
