package cart

import (
	"time"

	"github.com/xgrltd/storefront/internal/domain/cart"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

// ShippingLabel is what the order summary shows for the shipping line
const ShippingLabel = "Free"

// AddItemRequest represents a request to put a product in the cart
type AddItemRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
	Quantity  int `json:"quantity,omitempty"`
}

// UpdateQuantityRequest represents a request to set a line's quantity. The
// quantity is required since zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=9999"`
}

// LineItemResponse represents a cart line in API responses
type LineItemResponse struct {
	ProductID         int    `json:"product_id"`
	Name              string `json:"name"`
	UnitPrice         int64  `json:"unit_price"`
	FormattedPrice    string `json:"formatted_price"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	Quantity          int    `json:"quantity"`
	Subtotal          int64  `json:"subtotal"`
	FormattedSubtotal string `json:"formatted_subtotal"`
}

// CartResponse represents the cart in API responses
type CartResponse struct {
	Items          []LineItemResponse `json:"items"`
	LineCount      int                `json:"line_count"`
	TotalItemCount int                `json:"total_item_count"`
	TotalPrice     int64              `json:"total_price"`
	FormattedTotal string             `json:"formatted_total"`
	IsEmpty        bool               `json:"is_empty"`
}

// SummaryResponse represents the order summary in API responses
type SummaryResponse struct {
	Subtotal          int64  `json:"subtotal"`
	Shipping          int64  `json:"shipping"`
	Tax               int64  `json:"tax"`
	Total             int64  `json:"total"`
	FormattedSubtotal string `json:"formatted_subtotal"`
	FormattedShipping string `json:"formatted_shipping"`
	FormattedTax      string `json:"formatted_tax"`
	FormattedTotal    string `json:"formatted_total"`
}

// Receipt is what a completed checkout returns and the success page shows
type Receipt struct {
	OrderNumber string             `json:"order_number"`
	Summary     SummaryResponse    `json:"summary"`
	Items       []LineItemResponse `json:"items"`
	PlacedAt    time.Time          `json:"placed_at"`
}

// ToLineItemResponse converts a domain LineItem to a response
func ToLineItemResponse(item cart.LineItem) LineItemResponse {
	return LineItemResponse{
		ProductID:         item.ProductID,
		Name:              item.Name,
		UnitPrice:         item.UnitPrice,
		FormattedPrice:    valueobject.FormatNaira(item.UnitPrice),
		Category:          item.Category,
		Image:             item.ImageRef,
		Quantity:          item.Quantity,
		Subtotal:          item.Subtotal(),
		FormattedSubtotal: valueobject.FormatNaira(item.Subtotal()),
	}
}

// ToLineItemResponses converts line items, keeping their order
func ToLineItemResponses(items []cart.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToLineItemResponse(item)
	}
	return responses
}

// ToCartResponse converts a domain Cart to a response
func ToCartResponse(c *cart.Cart) CartResponse {
	total := c.TotalPrice()
	return CartResponse{
		Items:          ToLineItemResponses(c.Items()),
		LineCount:      c.LineCount(),
		TotalItemCount: c.TotalItemCount(),
		TotalPrice:     total,
		FormattedTotal: valueobject.FormatNaira(total),
		IsEmpty:        c.IsEmpty(),
	}
}

// ToSummaryResponse converts a domain Summary to a response
func ToSummaryResponse(s cart.Summary) SummaryResponse {
	shipping := ShippingLabel
	if !s.FreeShipping() {
		shipping = valueobject.FormatNaira(s.Shipping)
	}
	return SummaryResponse{
		Subtotal:          s.Subtotal,
		Shipping:          s.Shipping,
		Tax:               s.Tax,
		Total:             s.Total,
		FormattedSubtotal: valueobject.FormatNaira(s.Subtotal),
		FormattedShipping: shipping,
		FormattedTax:      valueobject.FormatNaira(s.Tax),
		FormattedTotal:    valueobject.FormatNaira(s.Total),
	}
}
