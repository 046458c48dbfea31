package cart

import (
	"github.com/xgrltd/storefront/internal/domain/shared"
)

// Event type constants
const (
	EventTypeCartItemAdded           = "CartItemAdded"
	EventTypeCartItemRemoved         = "CartItemRemoved"
	EventTypeCartItemQuantityUpdated = "CartItemQuantityUpdated"
	EventTypeCartCleared             = "CartCleared"
	EventTypeCheckoutCompleted       = "CheckoutCompleted"
)

// ItemAddedEvent is published when a product is added or its line grows
type ItemAddedEvent struct {
	shared.EventHeader
	ProductID   int    `json:"product_id"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unit_price"`
	Added       int    `json:"added"`
	NewQuantity int    `json:"new_quantity"`
}

// NewItemAddedEvent creates a new ItemAddedEvent
func NewItemAddedEvent(c *Cart, line LineItem, added int) *ItemAddedEvent {
	return &ItemAddedEvent{
		EventHeader: shared.NewEventHeader(EventTypeCartItemAdded, AggregateTypeCart, c.ID, c.SessionID),
		ProductID:   line.ProductID,
		Name:        line.Name,
		UnitPrice:   line.UnitPrice,
		Added:       added,
		NewQuantity: line.Quantity,
	}
}

// ItemRemovedEvent is published when a line is removed
type ItemRemovedEvent struct {
	shared.EventHeader
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// NewItemRemovedEvent creates a new ItemRemovedEvent
func NewItemRemovedEvent(c *Cart, line LineItem) *ItemRemovedEvent {
	return &ItemRemovedEvent{
		EventHeader: shared.NewEventHeader(EventTypeCartItemRemoved, AggregateTypeCart, c.ID, c.SessionID),
		ProductID:   line.ProductID,
		Quantity:    line.Quantity,
	}
}

// QuantityUpdatedEvent is published when a line's quantity is set
type QuantityUpdatedEvent struct {
	shared.EventHeader
	ProductID   int `json:"product_id"`
	OldQuantity int `json:"old_quantity"`
	NewQuantity int `json:"new_quantity"`
}

// NewQuantityUpdatedEvent creates a new QuantityUpdatedEvent
func NewQuantityUpdatedEvent(c *Cart, line LineItem, oldQuantity int) *QuantityUpdatedEvent {
	return &QuantityUpdatedEvent{
		EventHeader: shared.NewEventHeader(EventTypeCartItemQuantityUpdated, AggregateTypeCart, c.ID, c.SessionID),
		ProductID:   line.ProductID,
		OldQuantity: oldQuantity,
		NewQuantity: line.Quantity,
	}
}

// ClearedEvent is published when the cart is emptied
type ClearedEvent struct {
	shared.EventHeader
	Lines int `json:"lines"`
}

// NewClearedEvent creates a new ClearedEvent
func NewClearedEvent(c *Cart, lines int) *ClearedEvent {
	return &ClearedEvent{
		EventHeader: shared.NewEventHeader(EventTypeCartCleared, AggregateTypeCart, c.ID, c.SessionID),
		Lines:       lines,
	}
}

// CheckoutCompletedEvent is published once a mock checkout has cleared the
// cart
type CheckoutCompletedEvent struct {
	shared.EventHeader
	OrderNumber string `json:"order_number"`
	Lines       int    `json:"lines"`
	Items       int    `json:"items"`
	Subtotal    int64  `json:"subtotal"`
	Tax         int64  `json:"tax"`
	Total       int64  `json:"total"`
}

// NewCheckoutCompletedEvent creates a new CheckoutCompletedEvent
func NewCheckoutCompletedEvent(c *Cart, orderNumber string, summary Summary, lines, items int) *CheckoutCompletedEvent {
	return &CheckoutCompletedEvent{
		EventHeader: shared.NewEventHeader(EventTypeCheckoutCompleted, AggregateTypeCart, c.ID, c.SessionID),
		OrderNumber: orderNumber,
		Lines:       lines,
		Items:       items,
		Subtotal:    summary.Subtotal,
		Tax:         summary.Tax,
		Total:       summary.Total,
	}
}
