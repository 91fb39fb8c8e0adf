package domain

import "github.com/shopspring/decimal"

// ShoppingCart is the basket aggregate. UserName is its identity: one cart per user.
type ShoppingCart struct {
	UserName string     `json:"userName"`
	Items    []CartItem `json:"items"`
}

type CartItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Color       string          `json:"color,omitempty"`
}

func NewShoppingCart(userName string) *ShoppingCart {
	return &ShoppingCart{UserName: userName, Items: []CartItem{}}
}

// Subtotal is the line price for the item's quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *ShoppingCart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Clone returns a deep copy so callers can reprice items without touching c.
func (c *ShoppingCart) Clone() *ShoppingCart {
	if c == nil {
		return nil
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &ShoppingCart{UserName: c.UserName, Items: items}
}
