// Package sqlite stores coupons for the discount service.
//
// WAL mode is enabled on Open so lookups from concurrent gRPC calls never wait
// behind an admin write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-basket/internal/discount-service/domain"

	// Pure-Go driver, no CGO needed for Alpine images.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS coupons (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    product_name TEXT NOT NULL UNIQUE,
    description  TEXT NOT NULL DEFAULT '',
    -- decimal string, never a float
    amount       TEXT NOT NULL DEFAULT '0'
);
`

// seed rows are inserted only into an empty table.
var seed = []domain.Coupon{
	{ProductName: "IPhone X", Description: "IPhone Discount", Amount: decimal.NewFromInt(150)},
	{ProductName: "Samsung 10", Description: "Samsung Discount", Amount: decimal.NewFromInt(100)},
}

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies the schema and seeds
// the default coupons when the table is empty.
//
//	repo, err := sqlite.Open(ctx, "./data/discount.db")
func Open(ctx context.Context, path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// Single writer; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	r := &Repository{db: db}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&n); err != nil {
		return fmt.Errorf("sqlite: count coupons: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range seed {
		if _, err := r.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// GetByProductName returns domain.ErrCouponNotFound when no coupon matches.
func (r *Repository) GetByProductName(ctx context.Context, productName string) (domain.Coupon, error) {
	const q = `SELECT id, product_name, description, amount FROM coupons WHERE product_name = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, productName), productName)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Coupon, error) {
	const q = `SELECT id, product_name, description, amount FROM coupons WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id), fmt.Sprintf("id=%d", id))
}

func (r *Repository) Create(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	const q = `INSERT INTO coupons (product_name, description, amount) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.ProductName, c.Description, c.Amount.String())
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: create coupon %q: %w", c.ProductName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: create coupon %q: %w", c.ProductName, err)
	}
	c.ID = id
	return c, nil
}

// Update replaces every field of the coupon with c.ID.
func (r *Repository) Update(ctx context.Context, c domain.Coupon) (domain.Coupon, error) {
	const q = `UPDATE coupons SET product_name = ?, description = ?, amount = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.ProductName, c.Description, c.Amount.String(), c.ID)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: update coupon %d: %w", c.ID, err)
	}
	if err := requireRow(res); err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: update coupon %d: %w", c.ID, err)
	}
	return c, nil
}

func (r *Repository) DeleteByProductName(ctx context.Context, productName string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE product_name = ?`, productName)
	if err != nil {
		return fmt.Errorf("sqlite: delete coupon %q: %w", productName, err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("sqlite: delete coupon %q: %w", productName, err)
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row, ref string) (domain.Coupon, error) {
	var (
		c      domain.Coupon
		amount string
	)
	err := row.Scan(&c.ID, &c.ProductName, &c.Description, &amount)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coupon{}, domain.ErrCouponNotFound
	}
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: get coupon %s: %w", ref, err)
	}
	c.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("sqlite: coupon %s has invalid amount %q: %w", ref, amount, err)
	}
	return c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}
