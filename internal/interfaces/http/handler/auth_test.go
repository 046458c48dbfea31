package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
	"github.com/xgrltd/storefront/internal/interfaces/http/handler"
)

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/auth/login", handler.LoginRequest{Email: "jane@example.com", Password: "secret"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handler.AuthStateResponse](t, w)
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.IsAuthenticated)
	assert.Equal(t, &identity.Identity{ID: "user-1", Name: "jane", Email: "jane@example.com"}, resp.Data.User)
	assert.Equal(t, identity.DashboardPath, resp.Data.Location)
	assert.Equal(t, identity.DashboardPath, env.session().Location())
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"bad email", handler.LoginRequest{Email: "jane", Password: "secret"}},
		{"empty password", handler.LoginRequest{Email: "jane@example.com"}},
		{"empty body object", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, "/api/v1/auth/login", tt.body)

			info := requireError(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials)
			assert.Equal(t, "Invalid email or password. Please try again.", info.Message)
			assert.False(t, env.session().Auth().State().IsAuthenticated)
		})
	}
}

func TestAuthHandler_LoginMalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/v1/auth/login", `{"email":`)
	requireError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
}

func TestAuthHandler_LoginCancelledByNavigation(t *testing.T) {
	env := newTestEnv(t, withLoginDelay(time.Minute))
	env.do(http.MethodGet, "/", nil)
	s := env.session()

	done := make(chan string, 1)
	go func() {
		w := env.do(http.MethodPost, "/api/v1/auth/login", handler.LoginRequest{Email: "jane@example.com", Password: "secret"})
		done <- w.Body.String()
	}()
	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, 5*time.Millisecond)

	s.Navigate("/team")

	select {
	case body := <-done:
		assert.Contains(t, body, dto.ErrCodeCancelled)
	case <-time.After(5 * time.Second):
		t.Fatal("login did not return after navigation")
	}
	assert.False(t, s.Auth().State().IsAuthenticated)
	assert.Equal(t, "/team", s.Location())
}

func TestAuthHandler_Signup(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/auth/signup", handler.SignupRequest{
		Name:            "Ada Obi",
		Email:           "ada@example.com",
		Password:        "pw",
		ConfirmPassword: "pw",
		AgreeTerms:      true,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[handler.AuthStateResponse](t, w)
	require.NotNil(t, resp.Data.User)
	assert.True(t, strings.HasPrefix(resp.Data.User.ID, "user-"))
	assert.Equal(t, "Ada Obi", resp.Data.User.Name)
	assert.Equal(t, identity.DashboardPath, resp.Data.Location)
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    handler.SignupRequest
		fields []string
	}{
		{
			name:   "passwords differ",
			req:    handler.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "a", ConfirmPassword: "b", AgreeTerms: true},
			fields: []string{"confirm_password"},
		},
		{
			name:   "terms not accepted",
			req:    handler.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "a", ConfirmPassword: "a"},
			fields: []string{"agree_terms"},
		},
		{
			name:   "missing name",
			req:    handler.SignupRequest{Email: "ada@example.com", Password: "a", ConfirmPassword: "a", AgreeTerms: true},
			fields: []string{"name"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, "/api/v1/auth/signup", tt.req)

			info := requireError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
			var fields []string
			for _, d := range info.Details {
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}

	t.Run("bad email reaches the store", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do(http.MethodPost, "/api/v1/auth/signup", handler.SignupRequest{
			Name: "Ada", Email: "nope", Password: "a", ConfirmPassword: "a", AgreeTerms: true,
		})
		requireError(t, w, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials)
	})
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	me := decode[handler.AuthStateResponse](t, env.do(http.MethodGet, "/api/v1/auth/me", nil))
	assert.True(t, me.Data.IsAuthenticated)

	w := env.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handler.AuthStateResponse](t, w)
	assert.False(t, resp.Data.IsAuthenticated)
	assert.Nil(t, resp.Data.User)
	assert.Equal(t, identity.HomePath, resp.Data.Location)

	me = decode[handler.AuthStateResponse](t, env.do(http.MethodGet, "/api/v1/auth/me", nil))
	assert.False(t, me.Data.IsAuthenticated)
}

func TestAuthHandler_CheckRoute(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path      string
		protected bool
		allowed   bool
		redirect  string
	}{
		{"/", false, true, ""},
		{"/team", false, true, ""},
		{"/cartoons", false, true, ""},
		{"/cart", true, false, identity.LoginPath},
		{"/dashboard/orders/ORD-1", true, false, identity.LoginPath},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/v1/auth/routes/check?path="+tt.path, nil)
			require.Equal(t, http.StatusOK, w.Code)
			resp := decode[handler.RouteCheckResponse](t, w)
			assert.Equal(t, handler.RouteCheckResponse{
				Path:       tt.path,
				Protected:  tt.protected,
				Allowed:    tt.allowed,
				RedirectTo: tt.redirect,
			}, resp.Data)
		})
	}

	t.Run("does not navigate", func(t *testing.T) {
		assert.Equal(t, identity.HomePath, env.session().Location())
	})

	t.Run("allowed once logged in", func(t *testing.T) {
		env.login()
		resp := decode[handler.RouteCheckResponse](t, env.do(http.MethodGet, "/api/v1/auth/routes/check?path=/cart", nil))
		assert.True(t, resp.Data.Allowed)
		assert.Empty(t, resp.Data.RedirectTo)
	})

	t.Run("path required", func(t *testing.T) {
		requireError(t, env.do(http.MethodGet, "/api/v1/auth/routes/check", nil), http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}
