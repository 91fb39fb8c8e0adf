package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BasketCheckout carries the buyer details submitted with a checkout.
type BasketCheckout struct {
	UserName   string `json:"userName"`
	CustomerID string `json:"customerId"`

	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	AddressLine  string `json:"addressLine"`
	Country      string `json:"country"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`

	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv"`
	PaymentMethod int    `json:"paymentMethod"`
}

// BasketCheckoutEvent is published once a basket is checked out. The ordering
// side consumes it to create the order.
type BasketCheckoutEvent struct {
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	TraceID    string          `json:"traceId,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []CartItem      `json:"items"`
	BasketCheckout
}
