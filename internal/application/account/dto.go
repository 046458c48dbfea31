package account

import (
	"github.com/xgrltd/storefront/internal/domain/account"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

// OrderSummaryResponse is an order row in the order history
type OrderSummaryResponse struct {
	ID             string              `json:"id"`
	Date           string              `json:"date"`
	Status         account.OrderStatus `json:"status"`
	Total          int64               `json:"total"`
	FormattedTotal string              `json:"formatted_total"`
	ItemCount      int                 `json:"item_count"`
}

// OrderDetailResponse is a full order with its price breakdown
type OrderDetailResponse struct {
	account.Order
	FormattedTotal string            `json:"formatted_total"`
	Breakdown      account.Breakdown `json:"breakdown"`
}

// DashboardResponse is the account overview page
type DashboardResponse struct {
	User                 *identity.Identity     `json:"user"`
	Profile              account.Profile        `json:"profile"`
	FormattedTotalSpent  string                 `json:"formatted_total_spent"`
	RecentOrders         []OrderSummaryResponse `json:"recent_orders"`
	WishlistCount        int                    `json:"wishlist_count"`
	DefaultAddress       *account.Address       `json:"default_address,omitempty"`
	DefaultPaymentMethod *account.PaymentMethod `json:"default_payment_method,omitempty"`
}

// ToOrderSummaryResponse converts a domain Order to a history row
func ToOrderSummaryResponse(o account.Order) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:             o.ID,
		Date:           o.Date,
		Status:         o.Status,
		Total:          o.Total,
		FormattedTotal: valueobject.FormatNaira(o.Total),
		ItemCount:      o.ItemCount(),
	}
}

// ToOrderSummaryResponses converts orders, keeping their order
func ToOrderSummaryResponses(orders []account.Order) []OrderSummaryResponse {
	out := make([]OrderSummaryResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderSummaryResponse(o)
	}
	return out
}

// ToOrderDetailResponse converts a domain Order to a detail response
func ToOrderDetailResponse(o account.Order) OrderDetailResponse {
	return OrderDetailResponse{
		Order:          o,
		FormattedTotal: valueobject.FormatNaira(o.Total),
		Breakdown:      o.Breakdown(),
	}
}
