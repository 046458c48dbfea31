package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
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
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
	"github.com/xgrltd/storefront/internal/interfaces/http/handler"
	"github.com/xgrltd/storefront/internal/interfaces/http/middleware"
	"github.com/xgrltd/storefront/internal/interfaces/http/router"
)

const testCookie = "storefront_session"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv is a browser talking to the storefront route table
type testEnv struct {
	t       *testing.T
	manager *session.Manager
	engine  *gin.Engine
	cookie  *http.Cookie
}

type envOption func(*session.Config, *cartapp.Config)

func withLoginDelay(d time.Duration) envOption {
	return func(sc *session.Config, _ *cartapp.Config) { sc.Auth.LoginDelay = d }
}

func withCheckoutDelay(d time.Duration) envOption {
	return func(_ *session.Config, cc *cartapp.Config) { cc.CheckoutDelay = d }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	store := fixtures.MustLoad()
	kv := cache.NewMemoryKeyValueStore(0)

	sessionCfg := session.DefaultConfig()
	sessionCfg.Auth = identityapp.Config{}
	cartCfg := cartapp.DefaultConfig()
	cartCfg.CheckoutDelay = 0
	for _, opt := range opts {
		opt(&sessionCfg, &cartCfg)
	}

	manager := session.NewManager(sessionCfg, func(id string) identity.Storage {
		return storage.NewIdentityStorage(kv, "test", id)
	}, zap.NewNop())
	t.Cleanup(func() {
		manager.Close(context.Background())
		_ = kv.Close()
	})

	carts := cartapp.NewCartService(store, cartCfg, zap.NewNop())
	carts.SetOrderNumberGenerator(func() string { return "ORD-424242" })
	products := catalogapp.NewProductService(store)
	accounts := accountapp.NewAccountService(store)

	r := gin.New()
	r.Use(middleware.RequestID())
	router.Storefront(router.NewRouter(r), router.Handlers{
		Auth:    handler.NewAuthHandler(),
		Cart:    handler.NewCartHandler(carts),
		Catalog: handler.NewCatalogHandler(products),
		Account: handler.NewAccountHandler(accounts),
		Page:    handler.NewPageHandler(products, carts, accounts),
		System:  handler.NewSystemHandler("storefront", "test", manager),
	}, router.StorefrontOptions{
		Session: middleware.Session(manager, middleware.SessionConfig{
			CookieName: testCookie,
			MaxAge:     time.Hour,
			Path:       "/",
			SameSite:   http.SameSiteLaxMode,
		}),
	}).Setup()

	return &testEnv{t: t, manager: manager, engine: r}
}

// do sends a request with the env's cookie and keeps the cookie it gets back
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			e.cookie = c
		}
	}
	return w
}

// session returns the live session behind the env's cookie
func (e *testEnv) session() *session.Session {
	e.t.Helper()
	require.NotNil(e.t, e.cookie, "no request sent yet")
	s, ok := e.manager.Get(e.cookie.Value)
	require.True(e.t, ok)
	return s
}

func (e *testEnv) login() {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/auth/login", handler.LoginRequest{Email: "jane@example.com", Password: "secret"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *dto.ErrorInfo {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	env := decode[json.RawMessage](t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env.Error
}
