// Package basket holds the user-facing basket operations dispatched through
// the mediator.
package basket

import "github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"

type GetBasketQuery struct {
	UserName string
}

type GetBasketResult struct {
	Cart *domain.ShoppingCart
}

type StoreBasketCommand struct {
	Cart *domain.ShoppingCart
}

type StoreBasketResult struct {
	UserName string
	Cart     *domain.ShoppingCart
}

type DeleteBasketCommand struct {
	UserName string
}

type DeleteBasketResult struct {
	IsSuccess bool
}

type CheckoutBasketCommand struct {
	Checkout domain.BasketCheckout
}

type CheckoutBasketResult struct {
	IsSuccess bool
}
