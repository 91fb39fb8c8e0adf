package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

// BasketRepository is the canonical load/save/delete contract for the cart
// aggregate. Both the document stores and the caching decorator implement it.
type BasketRepository interface {
	// Load returns found=false, with a nil error, when the user has no cart.
	Load(ctx context.Context, userName string) (*domain.ShoppingCart, bool, error)
	// Save replaces the whole cart for cart.UserName.
	Save(ctx context.Context, cart *domain.ShoppingCart) error
	// Delete is idempotent.
	Delete(ctx context.Context, userName string) error
}

// Quote is a pricing authority answer for one product.
type Quote struct {
	Amount      decimal.Decimal
	Description string
}

// DiscountClient asks the pricing authority for a product's current price.
// ok=false means the authority could not be reached; callers fall back to
// their own price and never see the transport error.
type DiscountClient interface {
	Quote(ctx context.Context, productName string) (q Quote, ok bool)
}

type EventPublisher interface {
	PublishBasketCheckout(ctx context.Context, event domain.BasketCheckoutEvent) error
}
