package basket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/app/pricing"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/core/ports"
	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/mediator"
	"github.com/jcmexdev/ecommerce-basket/internal/pkg/telemetry"
)

// Deps are the collaborators shared by the basket handlers. Baskets is
// normally the cache-aside decorator.
type Deps struct {
	Baskets   ports.BasketRepository
	Pricing   *pricing.Enricher
	Publisher ports.EventPublisher
	Logger    *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type handlers struct {
	Deps
}

// RegisterHandlers registers every basket handler and validator on b.
func RegisterHandlers(b *mediator.Builder, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handlers{Deps: deps}

	if err := mediator.Register[GetBasketQuery, GetBasketResult](b, mediator.HandlerFunc[GetBasketQuery, GetBasketResult](h.getBasket)); err != nil {
		return err
	}
	if err := mediator.Register[StoreBasketCommand, StoreBasketResult](b, mediator.HandlerFunc[StoreBasketCommand, StoreBasketResult](h.storeBasket)); err != nil {
		return err
	}
	if err := mediator.Register[DeleteBasketCommand, DeleteBasketResult](b, mediator.HandlerFunc[DeleteBasketCommand, DeleteBasketResult](h.deleteBasket)); err != nil {
		return err
	}
	if err := mediator.Register[CheckoutBasketCommand, CheckoutBasketResult](b, mediator.HandlerFunc[CheckoutBasketCommand, CheckoutBasketResult](h.checkoutBasket)); err != nil {
		return err
	}

	return errors.Join(
		mediator.AddValidator[GetBasketQuery](b, mediator.ValidatorFunc[GetBasketQuery](validateGet)),
		mediator.AddValidator[StoreBasketCommand](b, mediator.ValidatorFunc[StoreBasketCommand](validateStore)),
		mediator.AddValidator[DeleteBasketCommand](b, mediator.ValidatorFunc[DeleteBasketCommand](validateDelete)),
		mediator.AddValidator[CheckoutBasketCommand](b, mediator.ValidatorFunc[CheckoutBasketCommand](validateCheckout)),
	)
}

func (h *handlers) getBasket(ctx context.Context, q GetBasketQuery) (GetBasketResult, error) {
	cart, found, err := h.Baskets.Load(ctx, q.UserName)
	if err != nil {
		return GetBasketResult{}, err
	}
	if !found {
		return GetBasketResult{}, &domain.NotFoundError{UserName: q.UserName}
	}
	return GetBasketResult{Cart: cart}, nil
}

// storeBasket reprices the cart before it is written; the stored cart is
// what the caller gets back.
func (h *handlers) storeBasket(ctx context.Context, c StoreBasketCommand) (StoreBasketResult, error) {
	cart := h.Pricing.Enrich(ctx, c.Cart)
	if err := h.Baskets.Save(ctx, cart); err != nil {
		return StoreBasketResult{}, err
	}
	return StoreBasketResult{UserName: cart.UserName, Cart: cart}, nil
}

func (h *handlers) deleteBasket(ctx context.Context, c DeleteBasketCommand) (DeleteBasketResult, error) {
	if err := h.Baskets.Delete(ctx, c.UserName); err != nil {
		return DeleteBasketResult{}, err
	}
	return DeleteBasketResult{IsSuccess: true}, nil
}

// checkoutBasket publishes before deleting so a failed publish leaves the
// basket in place for a retry.
func (h *handlers) checkoutBasket(ctx context.Context, c CheckoutBasketCommand) (CheckoutBasketResult, error) {
	userName := c.Checkout.UserName
	cart, found, err := h.Baskets.Load(ctx, userName)
	if err != nil {
		return CheckoutBasketResult{}, err
	}
	if !found {
		return CheckoutBasketResult{}, &domain.NotFoundError{UserName: userName}
	}

	event := domain.BasketCheckoutEvent{
		EventID:        uuid.NewString(),
		OccurredAt:     h.Now().UTC(),
		TraceID:        telemetry.TraceInfoFromContext(ctx).TraceID,
		TotalPrice:     cart.TotalPrice(),
		Items:          cart.Clone().Items,
		BasketCheckout: c.Checkout,
	}
	if err := h.Publisher.PublishBasketCheckout(ctx, event); err != nil {
		return CheckoutBasketResult{}, fmt.Errorf("checkout %q: %w", userName, err)
	}

	if err := h.Baskets.Delete(ctx, userName); err != nil {
		return CheckoutBasketResult{}, err
	}
	h.Logger.InfoContext(ctx, "basket checked out",
		"user_name", userName,
		"event_id", event.EventID,
		"total_price", event.TotalPrice.StringFixed(2),
	)
	return CheckoutBasketResult{IsSuccess: true}, nil
}
