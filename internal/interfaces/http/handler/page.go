package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	accountapp "github.com/xgrltd/storefront/internal/application/account"
	cartapp "github.com/xgrltd/storefront/internal/application/cart"
	catalogapp "github.com/xgrltd/storefront/internal/application/catalog"
	"github.com/xgrltd/storefront/internal/application/session"
	"github.com/xgrltd/storefront/internal/domain/account"
)

// PageHandler serves the JSON page models. Page routes run behind
// RouteGuard, so the session's location already points at the page.
type PageHandler struct {
	BaseHandler
	products *catalogapp.ProductService
	carts    *cartapp.CartService
	accounts *accountapp.AccountService
}

// NewPageHandler creates a new page handler
func NewPageHandler(products *catalogapp.ProductService, carts *cartapp.CartService, accounts *accountapp.AccountService) *PageHandler {
	return &PageHandler{products: products, carts: carts, accounts: accounts}
}

// Page is the envelope of every page model
type Page struct {
	Path string            `json:"path"`
	Auth AuthStateResponse `json:"auth"`
	Data any               `json:"data,omitempty"`
}

// HomePage is the landing page
type HomePage struct {
	Featured   []catalogapp.ProductResponse  `json:"featured"`
	Categories []catalogapp.CategoryResponse `json:"categories"`
}

// CartPage is the cart with its order summary
type CartPage struct {
	Cart    cartapp.CartResponse    `json:"cart"`
	Summary cartapp.SummaryResponse `json:"summary"`
}

// CheckoutSuccessPage shows the session's last receipt, if any
type CheckoutSuccessPage struct {
	Receipt *cartapp.Receipt `json:"receipt"`
}

// WishlistPage lists the saved products
type WishlistPage struct {
	Items []account.WishlistItem `json:"items"`
}

func (h *PageHandler) render(c *gin.Context, s *session.Session, data any) {
	h.Success(c, Page{
		Path: s.Location(),
		Auth: toAuthStateResponse(s.Auth().State(), s.Location()),
		Data: data,
	})
}

// Home renders /
func (h *PageHandler) Home(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	featured, err := h.products.Featured(c.Request.Context(), 0)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, HomePage{Featured: featured, Categories: categories})
}

// Products renders /products with the listing filters
func (h *PageHandler) Products(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req catalogapp.ListProductsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.products.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, resp)
}

// Product renders /products/:id
func (h *PageHandler) Product(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be an integer")
		return
	}
	resp, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, resp)
}

// Cart renders /cart
func (h *PageHandler) Cart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	summary, err := h.carts.Summary(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, CartPage{Cart: cart, Summary: summary})
}

// CheckoutSuccess renders /checkout/success
func (h *PageHandler) CheckoutSuccess(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var page CheckoutSuccessPage
	if r, found := s.LastReceipt(); found {
		page.Receipt = &r
	}
	h.render(c, s, page)
}

// Dashboard renders /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := h.accounts.Dashboard(c.Request.Context(), s.Auth().State().Identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, resp)
}

// Order renders /dashboard/orders/:id
func (h *PageHandler) Order(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	order, err := h.accounts.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, order)
}

// Wishlist renders /dashboard/wishlist
func (h *PageHandler) Wishlist(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	items, err := h.accounts.Wishlist(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, WishlistPage{Items: items})
}

// Team renders /team
func (h *PageHandler) Team(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	members, err := h.accounts.Team(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.render(c, s, members)
}

// Login renders /login and /signup; both only carry the auth state
func (h *PageHandler) Login(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.render(c, s, nil)
}
