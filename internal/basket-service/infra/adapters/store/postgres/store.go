// Package postgres stores baskets as JSONB documents keyed by user name.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"
	_ "github.com/lib/pq"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS basket_documents (
    user_name  TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var _ ports.BasketRepository = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn and pings with backoff until the database answers or
// ctx ends. Containers often start before their database is ready.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := backoff.Backoff{Min: 100 * time.Millisecond, Max: 5 * time.Second, Jitter: true}
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		wait := retry.Duration()
		logger.WarnContext(ctx, "postgres not ready, retrying", "attempt", int(retry.Attempt()), "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", errors.Join(ctx.Err(), err))
		case <-time.After(wait):
		}
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, userName string) (*domain.ShoppingCart, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM basket_documents WHERE user_name = $1`, userName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %q: %w", domain.ErrStoreFailure, userName, err)
	}

	var cart domain.ShoppingCart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, false, fmt.Errorf("%w: decode %q: %w", domain.ErrStoreFailure, userName, err)
	}
	return &cart, true, nil
}

// Save upserts the whole document.
func (s *Store) Save(ctx context.Context, cart *domain.ShoppingCart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", domain.ErrStoreFailure, cart.UserName, err)
	}

	const q = `
INSERT INTO basket_documents (user_name, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, q, cart.UserName, data); err != nil {
		return fmt.Errorf("%w: save %q: %w", domain.ErrStoreFailure, cart.UserName, err)
	}
	return nil
}

// Delete succeeds when no row matches.
func (s *Store) Delete(ctx context.Context, userName string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM basket_documents WHERE user_name = $1`, userName); err != nil {
		return fmt.Errorf("%w: delete %q: %w", domain.ErrStoreFailure, userName, err)
	}
	return nil
}
