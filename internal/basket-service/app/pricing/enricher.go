// Package pricing reprices cart items against the discount service right before
// a cart is stored.
package pricing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

const DefaultMaxConcurrency = 4

type Enricher struct {
	discounts      ports.DiscountClient
	maxConcurrency int
	logger         *slog.Logger
}

func NewEnricher(discounts ports.DiscountClient, maxConcurrency int, logger *slog.Logger) *Enricher {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{discounts: discounts, maxConcurrency: maxConcurrency, logger: logger}
}

// Enrich returns a copy of cart with each item priced from the discount service.
// It never fails: an item whose quote is unavailable, or zero, keeps the price
// the caller sent. If ctx ends before every quote is back, no item is repriced.
func (e *Enricher) Enrich(ctx context.Context, cart *domain.ShoppingCart) *domain.ShoppingCart {
	priced := cart.Clone()
	if len(priced.Items) == 0 {
		return priced
	}

	prices := make([]decimal.Decimal, len(priced.Items))
	repriced := make([]bool, len(priced.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)
	for i, item := range priced.Items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			q, ok := e.discounts.Quote(gctx, item.ProductName)
			if !ok || !q.Amount.IsPositive() {
				return nil
			}
			prices[i], repriced[i] = q.Amount, true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		e.logger.WarnContext(ctx, "pricing abandoned, keeping caller prices", "user_name", cart.UserName, "error", err)
		return cart.Clone()
	}

	for i := range priced.Items {
		if repriced[i] {
			priced.Items[i].Price = prices[i]
		}
	}
	return priced
}
