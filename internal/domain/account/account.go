package account

import (
	"github.com/shopspring/decimal"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// OrderItem is one product line on a past order
type OrderItem struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Price    int64  `json:"price" yaml:"price"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	Image    string `json:"image" yaml:"image"`
}

// ShippingAddress is where an order was sent
type ShippingAddress struct {
	Name    string `json:"name" yaml:"name"`
	Street  string `json:"street" yaml:"street"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	ZipCode string `json:"zip_code" yaml:"zip_code"`
	Country string `json:"country" yaml:"country"`
}

// OrderPayment is the payment method an order was paid with
type OrderPayment struct {
	Type       string `json:"type" yaml:"type"`
	Last4      string `json:"last4" yaml:"last4"`
	ExpiryDate string `json:"expiry_date" yaml:"expiry_date"`
	Image      string `json:"image" yaml:"image"`
}

// Order is a historical order shown on the dashboard
type Order struct {
	ID              string          `json:"id" yaml:"id"`
	Date            string          `json:"date" yaml:"date"`
	Status          OrderStatus     `json:"status" yaml:"status"`
	Total           int64           `json:"total" yaml:"total"`
	Items           []OrderItem     `json:"items" yaml:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address" yaml:"shipping_address"`
	PaymentMethod   OrderPayment    `json:"payment_method" yaml:"payment_method"`
	TrackingNumber  string          `json:"tracking_number" yaml:"tracking_number"`
}

// ItemCount is the number of lines on the order
func (o Order) ItemCount() int {
	return len(o.Items)
}

// Breakdown is how an order total is presented: the stored total already
// includes tax, so subtotal and tax are carved out of it.
type Breakdown struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

var (
	breakdownSubtotalShare = decimal.NewFromFloat(0.9)
	breakdownTaxShare      = decimal.NewFromFloat(0.1)
)

// Breakdown splits the total into a 90% subtotal and 10% tax
func (o Order) Breakdown() Breakdown {
	total := valueobject.NewMoney(o.Total)
	return Breakdown{
		Subtotal: total.Percent(breakdownSubtotalShare).Int64(),
		Shipping: 0,
		Tax:      total.Percent(breakdownTaxShare).Int64(),
		Total:    total.Int64(),
	}
}

// WishlistItem is a product saved for later
type WishlistItem struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Price    int64  `json:"price" yaml:"price"`
	Image    string `json:"image" yaml:"image"`
	Category string `json:"category" yaml:"category"`
}

// Address is a saved delivery address
type Address struct {
	ID      int    `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Default bool   `json:"default" yaml:"default"`
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Street  string `json:"street" yaml:"street"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	ZipCode string `json:"zip_code" yaml:"zip_code"`
	Country string `json:"country" yaml:"country"`
}

// PaymentMethod is a saved way to pay
type PaymentMethod struct {
	ID         int    `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"`
	Default    bool   `json:"default" yaml:"default"`
	CardType   string `json:"card_type,omitempty" yaml:"card_type"`
	Last4      string `json:"last4" yaml:"last4"`
	ExpiryDate string `json:"expiry_date" yaml:"expiry_date"`
	Image      string `json:"image" yaml:"image"`
}

// Preferences are the profile's notification and display settings
type Preferences struct {
	MarketingEmails    bool `json:"marketing_emails" yaml:"marketing_emails"`
	OrderNotifications bool `json:"order_notifications" yaml:"order_notifications"`
	TwoFactorAuth      bool `json:"two_factor_auth" yaml:"two_factor_auth"`
	DarkMode           bool `json:"dark_mode" yaml:"dark_mode"`
}

// Profile is the account holder shown on the dashboard
type Profile struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Email       string      `json:"email" yaml:"email"`
	Phone       string      `json:"phone" yaml:"phone"`
	Avatar      string      `json:"avatar" yaml:"avatar"`
	DateJoined  string      `json:"date_joined" yaml:"date_joined"`
	TotalOrders int         `json:"total_orders" yaml:"total_orders"`
	TotalSpent  int64       `json:"total_spent" yaml:"total_spent"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
}

// TeamMember is a person on the about-us page
type TeamMember struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Bio   string `json:"bio" yaml:"bio"`
	Image string `json:"image" yaml:"image"`
}

// DefaultAddress returns the address flagged default, or the first one
func DefaultAddress(addresses []Address) (Address, bool) {
	for _, a := range addresses {
		if a.Default {
			return a, true
		}
	}
	if len(addresses) > 0 {
		return addresses[0], true
	}
	return Address{}, false
}

// DefaultPaymentMethod returns the payment method flagged default, or the
// first one
func DefaultPaymentMethod(methods []PaymentMethod) (PaymentMethod, bool) {
	for _, m := range methods {
		if m.Default {
			return m, true
		}
	}
	if len(methods) > 0 {
		return methods[0], true
	}
	return PaymentMethod{}, false
}
