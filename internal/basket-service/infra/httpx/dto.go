package httpx

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-basket/internal/basket-service/domain"
)

type CartRequest struct {
	UserName string        `json:"userName"`
	Items    []CartItemDTO `json:"items"`
}

// CartItemDTO accepts the price as a JSON number or a decimal string.
type CartItemDTO struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Color       string          `json:"color,omitempty"`
}

type CartResponse struct {
	UserName   string        `json:"userName"`
	Items      []CartItemDTO `json:"items"`
	TotalPrice string        `json:"totalPrice"`
}

type SuccessResponse struct {
	IsSuccess bool `json:"isSuccess"`
}

type CheckoutRequest struct {
	UserName      string `json:"userName"`
	CustomerID    string `json:"customerId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	EmailAddress  string `json:"emailAddress"`
	AddressLine   string `json:"addressLine"`
	Country       string `json:"country"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv"`
	PaymentMethod int    `json:"paymentMethod"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r CartRequest) toDomain() *domain.ShoppingCart {
	cart := domain.NewShoppingCart(r.UserName)
	for _, it := range r.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Color:       it.Color,
		})
	}
	return cart
}

func (r CheckoutRequest) toDomain() domain.BasketCheckout {
	return domain.BasketCheckout{
		UserName:      r.UserName,
		CustomerID:    r.CustomerID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		EmailAddress:  r.EmailAddress,
		AddressLine:   r.AddressLine,
		Country:       r.Country,
		State:         r.State,
		ZipCode:       r.ZipCode,
		CardName:      r.CardName,
		CardNumber:    r.CardNumber,
		Expiration:    r.Expiration,
		CVV:           r.CVV,
		PaymentMethod: r.PaymentMethod,
	}
}

func mapCartToResponse(cart *domain.ShoppingCart) CartResponse {
	items := make([]CartItemDTO, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = CartItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Color:       it.Color,
		}
	}
	return CartResponse{
		UserName:   cart.UserName,
		Items:      items,
		TotalPrice: cart.TotalPrice().StringFixed(2),
	}
}
