package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	accountapp "github.com/xgrltd/storefront/internal/application/account"
	cartapp "github.com/xgrltd/storefront/internal/application/cart"
	catalogapp "github.com/xgrltd/storefront/internal/application/catalog"
	identityapp "github.com/xgrltd/storefront/internal/application/identity"
	"github.com/xgrltd/storefront/internal/application/session"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/infrastructure/cache"
	"github.com/xgrltd/storefront/internal/infrastructure/fixtures"
	"github.com/xgrltd/storefront/internal/infrastructure/storage"
	"github.com/xgrltd/storefront/internal/interfaces/http/handler"
	"github.com/xgrltd/storefront/internal/interfaces/http/middleware"
)

func newStorefront(t *testing.T, opts StorefrontOptions, global ...gin.HandlerFunc) (*gin.Engine, *session.Manager) {
	t.Helper()

	store := fixtures.MustLoad()
	kv := cache.NewMemoryKeyValueStore(0)
	cfg := session.DefaultConfig()
	cfg.Auth = identityapp.Config{}
	manager := session.NewManager(cfg, func(id string) identity.Storage {
		return storage.NewIdentityStorage(kv, "router", id)
	}, zap.NewNop())
	t.Cleanup(func() {
		manager.Close(context.Background())
		_ = kv.Close()
	})

	products := catalogapp.NewProductService(store)
	carts := cartapp.NewCartService(store, cartapp.Config{}, zap.NewNop())
	accounts := accountapp.NewAccountService(store)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(global...)
	opts.Session = middleware.Session(manager, middleware.SessionConfig{
		CookieName: "sid",
		MaxAge:     time.Hour,
		Path:       "/",
	})

	Storefront(NewRouter(engine), Handlers{
		Auth:    handler.NewAuthHandler(),
		Cart:    handler.NewCartHandler(carts),
		Catalog: handler.NewCatalogHandler(products),
		Account: handler.NewAccountHandler(accounts),
		Page:    handler.NewPageHandler(products, carts, accounts),
		System:  handler.NewSystemHandler("storefront", "test", manager),
	}, opts).Setup()
	return engine, manager
}

func TestStorefront_Routes(t *testing.T) {
	engine, _ := newStorefront(t, StorefrontOptions{})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"GET /api/v1/auth/routes/check",
		"GET /api/v1/cart",
		"DELETE /api/v1/cart",
		"POST /api/v1/cart/items",
		"PUT /api/v1/cart/items/:product_id",
		"DELETE /api/v1/cart/items/:product_id",
		"GET /api/v1/cart/summary",
		"POST /api/v1/cart/checkout",
		"GET /api/v1/catalog/products",
		"GET /api/v1/catalog/products/featured",
		"GET /api/v1/catalog/products/:id",
		"GET /api/v1/catalog/categories",
		"GET /api/v1/account/dashboard",
		"GET /api/v1/account/orders/:id",
		"GET /api/v1/team",
		"GET /",
		"GET /products/:id",
		"GET /checkout/success",
		"GET /dashboard/wishlist",
		"GET /login",
		"GET /signup",
		"GET /health",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestStorefront_Guards(t *testing.T) {
	engine, _ := newStorefront(t, StorefrontOptions{})

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/health", http.StatusOK, ""},
		{"/", http.StatusOK, ""},
		{"/team", http.StatusOK, ""},
		{"/dashboard", http.StatusSeeOther, identity.LoginPath},
		{"/cart", http.StatusSeeOther, identity.LoginPath},
		{"/api/v1/cart", http.StatusOK, ""},
		{"/api/v1/account/profile", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestStorefront_AuthLimit(t *testing.T) {
	var limited []string
	engine, _ := newStorefront(t, StorefrontOptions{
		AuthLimit: func(c *gin.Context) {
			limited = append(limited, c.FullPath())
			c.AbortWithStatus(http.StatusTooManyRequests)
		},
	})

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/signup", "/api/v1/auth/logout"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		if path == "/api/v1/auth/logout" {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
	require.Equal(t, []string{"/api/v1/auth/login", "/api/v1/auth/signup"}, limited)
}

func TestStorefront_HealthOpensNoSession(t *testing.T) {
	engine, manager := newStorefront(t, StorefrontOptions{})

	for range 50 {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	}
	assert.Equal(t, 0, manager.Len())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, manager.Len())
}

func TestStorefront_RejectedRequestOpensNoSession(t *testing.T) {
	engine, manager := newStorefront(t, StorefrontOptions{}, func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTooManyRequests)
	})

	for _, path := range []string{"/api/v1/cart", "/", "/dashboard"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code, path)
	}
	assert.Equal(t, 0, manager.Len())
}
