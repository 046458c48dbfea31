package router

import (
	"github.com/gin-gonic/gin"

	"github.com/xgrltd/storefront/internal/interfaces/http/handler"
	"github.com/xgrltd/storefront/internal/interfaces/http/middleware"
)

// Handlers are the storefront's HTTP handlers
type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Catalog *handler.CatalogHandler
	Account *handler.AccountHandler
	Page    *handler.PageHandler
	System  *handler.SystemHandler
}

// StorefrontOptions tune the storefront route table
type StorefrontOptions struct {
	// Session attaches the visitor's session on API and page routes. The
	// health probe never opens one.
	Session gin.HandlerFunc
	// AuthLimit runs in front of login and signup. Nil disables it.
	AuthLimit gin.HandlerFunc
}

// Storefront registers the API, page and health routes on r. Call Setup
// afterwards.
func Storefront(r *Router, h Handlers, opts StorefrontOptions) *Router {
	visitor := func(name, prefix string) *Group {
		g := NewGroup(name, prefix)
		if opts.Session != nil {
			g.Use(opts.Session)
		}
		return g
	}
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if opts.AuthLimit == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{opts.AuthLimit, fn}
	}

	authRoutes := visitor("auth", "/auth")
	authRoutes.POST("/login", limited(h.Auth.Login)...).
		POST("/signup", limited(h.Auth.Signup)...).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		GET("/routes/check", h.Auth.CheckRoute)

	cartRoutes := visitor("cart", "/cart")
	cartRoutes.GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:product_id", h.Cart.UpdateQuantity).
		DELETE("/items/:product_id", h.Cart.RemoveItem).
		GET("/summary", h.Cart.Summary).
		POST("/checkout", h.Cart.Checkout)

	catalogRoutes := visitor("catalog", "/catalog")
	catalogRoutes.GET("/products", h.Catalog.ListProducts).
		GET("/products/featured", h.Catalog.Featured).
		GET("/products/:id", h.Catalog.GetProduct).
		GET("/categories", h.Catalog.Categories)

	accountRoutes := visitor("account", "/account").Use(middleware.RequireAuth())
	accountRoutes.GET("/dashboard", h.Account.Dashboard).
		GET("/orders", h.Account.Orders).
		GET("/orders/:id", h.Account.Order).
		GET("/wishlist", h.Account.Wishlist).
		GET("/addresses", h.Account.Addresses).
		GET("/payment-methods", h.Account.PaymentMethods).
		GET("/profile", h.Account.Profile)

	teamRoutes := visitor("team", "/team")
	teamRoutes.GET("", h.Account.Team)

	r.API(authRoutes, cartRoutes, catalogRoutes, accountRoutes, teamRoutes)

	pages := visitor("pages", "").Use(middleware.RouteGuard())
	pages.GET("/", h.Page.Home).
		GET("/products", h.Page.Products).
		GET("/products/:id", h.Page.Product).
		GET("/cart", h.Page.Cart).
		GET("/checkout/success", h.Page.CheckoutSuccess).
		GET("/dashboard", h.Page.Dashboard).
		GET("/dashboard/orders/:id", h.Page.Order).
		GET("/dashboard/wishlist", h.Page.Wishlist).
		GET("/team", h.Page.Team).
		GET("/login", h.Page.Login).
		GET("/signup", h.Page.Login)

	system := NewGroup("system", "")
	system.GET("/health", h.System.Health)

	return r.Pages(pages, system)
}
