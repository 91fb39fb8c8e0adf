package basket

import (
	"fmt"
	"strings"

	"github.com/jcmexdev/ecommerce-basket/internal/pkg/mediator"
)

func required(field, value string) []mediator.FieldError {
	if strings.TrimSpace(value) == "" {
		return []mediator.FieldError{{Field: field, Message: field + " is required"}}
	}
	return nil
}

func validateGet(q GetBasketQuery) []mediator.FieldError {
	return required("UserName", q.UserName)
}

func validateDelete(c DeleteBasketCommand) []mediator.FieldError {
	return required("UserName", c.UserName)
}

// validateStore reports every malformed item, not just the first.
func validateStore(c StoreBasketCommand) []mediator.FieldError {
	if c.Cart == nil {
		return []mediator.FieldError{{Field: "Cart", Message: "Cart can not be null"}}
	}
	failures := required("UserName", c.Cart.UserName)
	for i, it := range c.Cart.Items {
		field := func(name string) string { return fmt.Sprintf("Items[%d].%s", i, name) }
		failures = append(failures, required(field("ProductID"), it.ProductID)...)
		failures = append(failures, required(field("ProductName"), it.ProductName)...)
		if it.Quantity < 1 {
			failures = append(failures, mediator.FieldError{Field: field("Quantity"), Message: "Quantity must be at least 1"})
		}
		if it.Price.IsNegative() {
			failures = append(failures, mediator.FieldError{Field: field("Price"), Message: "Price must not be negative"})
		}
	}
	return failures
}

func validateCheckout(c CheckoutBasketCommand) []mediator.FieldError {
	failures := required("UserName", c.Checkout.UserName)
	return append(failures, required("CustomerID", c.Checkout.CustomerID)...)
}
