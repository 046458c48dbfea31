package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	cartapp "github.com/xgrltd/storefront/internal/application/cart"
)

// CartHandler serves the session cart
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// addItemBody defaults the quantity to one when the client leaves it out
type addItemBody struct {
	ProductID int  `json:"product_id" binding:"required,min=1"`
	Quantity  *int `json:"quantity" binding:"omitempty,max=9999"`
}

// Get returns the cart.
// GET /api/v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Get(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem puts a product in the cart, merging with an existing line.
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body addItemBody
	if !h.bindJSON(c, &body) {
		return
	}
	req := cartapp.AddItemRequest{ProductID: body.ProductID, Quantity: 1}
	if body.Quantity != nil {
		req.Quantity = *body.Quantity
	}

	resp, err := h.cartService.AddItem(c.Request.Context(), s, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
// PUT /api/v1/cart/items/:product_id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.productID(c)
	if !ok {
		return
	}
	var req cartapp.UpdateQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.cartService.UpdateQuantity(c.Request.Context(), s, productID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem deletes a line.
// DELETE /api/v1/cart/items/:product_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	resp, err := h.cartService.RemoveItem(c.Request.Context(), s, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear empties the cart.
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Clear(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Summary returns subtotal, shipping, tax and total.
// GET /api/v1/cart/summary
func (h *CartHandler) Summary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.cartService.Summary(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Checkout places the order after the simulated payment delay. Navigating
// the session elsewhere during the delay cancels it with 409.
// POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	receipt, err := h.cartService.Checkout(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

func (h *CartHandler) productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("product_id"))
	if err != nil || id < 1 {
		h.BadRequest(c, "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}
