package handler

import (
	"github.com/gin-gonic/gin"

	accountapp "github.com/xgrltd/storefront/internal/application/account"
)

// AccountHandler serves the signed-in account area. Routes are mounted
// behind RequireAuth.
type AccountHandler struct {
	BaseHandler
	accountService *accountapp.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *accountapp.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Dashboard returns the account overview for the session's user.
// GET /api/v1/account/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.accountService.Dashboard(c.Request.Context(), s.Auth().State().Identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Orders returns the order history.
// GET /api/v1/account/orders
func (h *AccountHandler) Orders(c *gin.Context) {
	orders, err := h.accountService.Orders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, len(orders))
}

// Order returns one order with its price breakdown.
// GET /api/v1/account/orders/:id
func (h *AccountHandler) Order(c *gin.Context) {
	order, err := h.accountService.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Wishlist returns the saved products.
// GET /api/v1/account/wishlist
func (h *AccountHandler) Wishlist(c *gin.Context) {
	items, err := h.accountService.Wishlist(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, len(items))
}

// Addresses returns the saved addresses.
// GET /api/v1/account/addresses
func (h *AccountHandler) Addresses(c *gin.Context) {
	addresses, err := h.accountService.Addresses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// PaymentMethods returns the saved payment methods.
// GET /api/v1/account/payment-methods
func (h *AccountHandler) PaymentMethods(c *gin.Context) {
	methods, err := h.accountService.PaymentMethods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// Profile returns the account profile.
// GET /api/v1/account/profile
func (h *AccountHandler) Profile(c *gin.Context) {
	profile, err := h.accountService.Profile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Team returns the company team members.
// GET /api/v1/team
func (h *AccountHandler) Team(c *gin.Context) {
	members, err := h.accountService.Team(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}
