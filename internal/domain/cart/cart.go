package cart

import (
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

// AggregateTypeCart is the aggregate type recorded on cart events
const AggregateTypeCart = "Cart"

// MaxQuantity caps the units of one product a cart line can hold
const MaxQuantity = 9999

var (
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 9999")
	ErrInvalidPrice    = shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	ErrInvalidProduct  = shared.NewDomainError("INVALID_PRODUCT", "Product ID must be positive")
	ErrEmptyCart       = shared.NewDomainError("EMPTY_CART", "Your cart is empty")
)

// LineItem is one product in the cart. Quantity is always >= 1 while the
// item is stored.
type LineItem struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Category  string `json:"category"`
	ImageRef  string `json:"image"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (l LineItem) Subtotal() int64 {
	return valueobject.NewMoney(l.UnitPrice).MultiplyByInt(int64(l.Quantity)).Int64()
}

// Cart holds a session's line items in insertion order, at most one per
// product.
type Cart struct {
	shared.Aggregate
	SessionID string
	items     []LineItem
}

// NewCart creates an empty cart for a session
func NewCart(sessionID string) *Cart {
	return &Cart{
		Aggregate: shared.NewAggregate(),
		SessionID: sessionID,
		items:     make([]LineItem, 0),
	}
}

// AddItem appends item with the given quantity, or increments the quantity
// of the existing line for the same product.
func (c *Cart) AddItem(item LineItem, quantity int) error {
	if item.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	if item.UnitPrice < 0 {
		return ErrInvalidPrice
	}

	idx := c.indexOf(item.ProductID)
	if idx >= 0 {
		if c.items[idx].Quantity > MaxQuantity-quantity {
			return ErrInvalidQuantity
		}
		c.items[idx].Quantity += quantity
	} else {
		item.Quantity = quantity
		c.items = append(c.items, item)
		idx = len(c.items) - 1
	}

	c.mutated()
	c.Record(NewItemAddedEvent(c, c.items[idx], quantity))
	return nil
}

// RemoveItem deletes the line for productID. Removing an absent product is
// a no-op and reports false.
func (c *Cart) RemoveItem(productID int) bool {
	idx := c.indexOf(productID)
	if idx < 0 {
		return false
	}
	removed := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)

	c.mutated()
	c.Record(NewItemRemovedEvent(c, removed))
	return true
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID, quantity int) error {
	if quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return nil
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}
	old := c.items[idx].Quantity
	if old == quantity {
		return nil
	}
	c.items[idx].Quantity = quantity

	c.mutated()
	c.Record(NewQuantityUpdatedEvent(c, c.items[idx], old))
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	if len(c.items) == 0 {
		return
	}
	lines := len(c.items)
	c.items = make([]LineItem, 0)

	c.mutated()
	c.Record(NewClearedEvent(c, lines))
}

// Items returns a copy of the line items in insertion order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line for productID
func (c *Cart) Item(productID int) (LineItem, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return LineItem{}, false
	}
	return c.items[idx], true
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// LineCount is the number of distinct products in the cart
func (c *Cart) LineCount() int {
	return len(c.items)
}

// TotalItemCount is the sum of quantities over all lines
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price times quantity over all lines
func (c *Cart) TotalPrice() int64 {
	total := valueobject.Zero()
	for _, item := range c.items {
		total = total.Add(valueobject.NewMoney(item.UnitPrice).MultiplyByInt(int64(item.Quantity)))
	}
	return total.Int64()
}

func (c *Cart) indexOf(productID int) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) mutated() {
	c.Bump()
}
