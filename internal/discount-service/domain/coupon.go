package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrCouponNotFound = errors.New("coupon not found")

type Coupon struct {
	ID          int64
	ProductName string
	Description string
	Amount      decimal.Decimal
}

// NoDiscount is returned for products without a coupon.
func NoDiscount() Coupon {
	return Coupon{
		ProductName: "No Discount",
		Description: "No Discount Desc",
		Amount:      decimal.Zero,
	}
}
