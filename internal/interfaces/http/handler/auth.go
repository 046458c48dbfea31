package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xgrltd/storefront/internal/domain/identity"
)

// AuthHandler serves the mock auth API. Each request acts on the auth store
// of the caller's session.
type AuthHandler struct {
	BaseHandler
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Login signs the session in after the simulated delay.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := s.Auth().Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuthStateResponse(s.Auth().State(), s.Location()))
}

// Signup registers the session as a new user after the simulated delay.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req SignupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := s.Auth().Signup(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAuthStateResponse(s.Auth().State(), s.Location()))
}

// Logout forgets the session's identity.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Auth().Logout(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAuthStateResponse(s.Auth().State(), s.Location()))
}

// Me returns the session's auth state.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, toAuthStateResponse(s.Auth().State(), s.Location()))
}

// CheckRoute reports whether the session may open ?path= without moving it.
// GET /api/v1/auth/routes/check
func (h *AuthHandler) CheckRoute(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	path := c.Query("path")
	if path == "" {
		h.BadRequest(c, "path is required")
		return
	}

	redirect := identity.GuardRedirect(path, s.Auth().State())
	h.Success(c, RouteCheckResponse{
		Path:       path,
		Protected:  identity.IsRouteProtected(path),
		Allowed:    redirect == "",
		RedirectTo: redirect,
	})
}
