// Package cart holds the cart use cases: editing a session's cart and the
// mocked checkout.
package cart

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xgrltd/storefront/internal/application/delay"
	"github.com/xgrltd/storefront/internal/domain/cart"
	"github.com/xgrltd/storefront/internal/domain/catalog"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/infrastructure/telemetry"
)

// Shopper is the session a cart operation runs in. WithCart runs fn with
// exclusive access to the session's cart.
type Shopper interface {
	identity.Session
	WithCart(fn func(c *cart.Cart) error) error
	RememberReceipt(r Receipt)
}

// Config holds checkout settings
type Config struct {
	CheckoutDelay time.Duration
	TaxRate       decimal.Decimal
}

// DefaultConfig returns the checkout settings the storefront ships with
func DefaultConfig() Config {
	return Config{
		CheckoutDelay: 2 * time.Second,
		TaxRate:       cart.DefaultTaxRate,
	}
}

// CartService handles cart and checkout operations
type CartService struct {
	products       catalog.ProductRepository
	config         Config
	eventPublisher shared.EventPublisher
	orderNumbers   func() string
	now            func() time.Time
	logger         *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(products catalog.ProductRepository, config Config, log *zap.Logger) *CartService {
	return &CartService{
		products:     products,
		config:       config,
		orderNumbers: NewOrderNumber,
		now:          time.Now,
		logger:       log,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOrderNumberGenerator replaces the random order number source
func (s *CartService) SetOrderNumberGenerator(fn func() string) {
	s.orderNumbers = fn
}

// SetClock replaces the clock stamped on receipts
func (s *CartService) SetClock(now func() time.Time) {
	s.now = now
}

// NewOrderNumber returns "ORD-" followed by six random digits
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.IntN(900000))
}

// Get returns the shopper's cart
func (s *CartService) Get(ctx context.Context, shopper Shopper) (CartResponse, error) {
	var response CartResponse
	err := shopper.WithCart(func(c *cart.Cart) error {
		response = ToCartResponse(c)
		return nil
	})
	return response, err
}

// AddItem puts quantity units of a catalog product in the cart
func (s *CartService) AddItem(ctx context.Context, shopper Shopper, req AddItemRequest) (CartResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return CartResponse{}, err
	}

	item := cart.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Category:  product.Category,
		ImageRef:  product.Image,
	}
	return s.mutate(ctx, shopper, func(c *cart.Cart) error {
		return c.AddItem(item, req.Quantity)
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *CartService) UpdateQuantity(ctx context.Context, shopper Shopper, productID, quantity int) (CartResponse, error) {
	return s.mutate(ctx, shopper, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
}

// RemoveItem deletes a line; removing an absent product changes nothing
func (s *CartService) RemoveItem(ctx context.Context, shopper Shopper, productID int) (CartResponse, error) {
	return s.mutate(ctx, shopper, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, shopper Shopper) (CartResponse, error) {
	return s.mutate(ctx, shopper, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Summary returns the order summary for the current cart
func (s *CartService) Summary(ctx context.Context, shopper Shopper) (SummaryResponse, error) {
	var summary cart.Summary
	err := shopper.WithCart(func(c *cart.Cart) error {
		summary = cart.Summarize(c, s.config.TaxRate)
		return nil
	})
	return ToSummaryResponse(summary), err
}

func (s *CartService) mutate(ctx context.Context, shopper Shopper, fn func(c *cart.Cart) error) (CartResponse, error) {
	var (
		response CartResponse
		events   []shared.DomainEvent
	)
	err := shopper.WithCart(func(c *cart.Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		events = c.PullDomainEvents()
		response = ToCartResponse(c)
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}
	s.publish(ctx, events)
	return response, nil
}

// Checkout places a mock order. After the checkout delay the cart is
// snapshotted into a receipt, cleared, and the shopper is sent to the
// success page. Navigating away during the delay cancels the checkout and
// leaves the cart untouched.
func (s *CartService) Checkout(ctx context.Context, shopper Shopper) (*Receipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "cart.checkout", telemetry.SessionIDKey.String(shopper.ID()))
	defer span.End()

	var empty bool
	_ = shopper.WithCart(func(c *cart.Cart) error {
		empty = c.IsEmpty()
		return nil
	})
	if empty {
		telemetry.Fail(span, cart.ErrEmptyCart)
		return nil, cart.ErrEmptyCart
	}

	opCtx, cancel := shopper.Begin(ctx)
	defer cancel()

	if err := delay.Wait(opCtx, s.config.CheckoutDelay); err != nil {
		telemetry.Event(span, "checkout_cancelled")
		logger.WithLogger(ctx, s.logger).Info("Checkout cancelled", zap.String("session_id", shopper.ID()))
		return nil, err
	}

	var (
		receipt Receipt
		events  []shared.DomainEvent
	)
	err := shopper.Commit(opCtx, func(nav identity.Navigator) error {
		return shopper.WithCart(func(c *cart.Cart) error {
			if c.IsEmpty() {
				return cart.ErrEmptyCart
			}
			items := c.Items()
			summary := cart.Summarize(c, s.config.TaxRate)
			totalItems := c.TotalItemCount()

			receipt = Receipt{
				OrderNumber: s.orderNumbers(),
				Summary:     ToSummaryResponse(summary),
				Items:       ToLineItemResponses(items),
				PlacedAt:    s.now(),
			}
			c.Clear()
			events = append(c.PullDomainEvents(),
				cart.NewCheckoutCompletedEvent(c, receipt.OrderNumber, summary, len(items), totalItems))

			nav.Navigate(identity.CheckoutSuccessPath)
			return nil
		})
	})
	if err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}

	shopper.RememberReceipt(receipt)
	s.publish(ctx, events)

	telemetry.Succeed(span,
		telemetry.OrderNumberKey.String(receipt.OrderNumber),
		telemetry.AmountKey.Int64(receipt.Summary.Total),
	)
	logger.WithLogger(ctx, s.logger).Info("Checkout completed",
		zap.String("session_id", shopper.ID()),
		zap.String("order_number", receipt.OrderNumber),
		zap.Int64("total", receipt.Summary.Total),
	)
	return &receipt, nil
}

func (s *CartService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish cart events", zap.Error(err))
	}
}
