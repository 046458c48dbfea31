package cart

import (
	"github.com/shopspring/decimal"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

// DefaultTaxRate is the flat tax applied at checkout
var DefaultTaxRate = decimal.NewFromFloat(0.1)

// Summary is the order summary shown next to the cart. Shipping is always
// free.
type Summary struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// FreeShipping reports whether shipping costs nothing
func (s Summary) FreeShipping() bool {
	return s.Shipping == 0
}

// Summarize computes the order summary for the cart at the given tax rate
func Summarize(c *Cart, taxRate decimal.Decimal) Summary {
	return SummarizeAmount(c.TotalPrice(), taxRate)
}

// SummarizeAmount computes an order summary for a subtotal
func SummarizeAmount(subtotal int64, taxRate decimal.Decimal) Summary {
	sub := valueobject.NewMoney(subtotal)
	tax := sub.Percent(taxRate)
	return Summary{
		Subtotal: sub.Int64(),
		Shipping: 0,
		Tax:      tax.Int64(),
		Total:    sub.Add(tax).Int64(),
	}
}
