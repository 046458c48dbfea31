package handler

import "github.com/xgrltd/storefront/internal/domain/identity"

// LoginRequest is the login form. Credential checks happen in the auth
// store so a bad email gets the same answer as a bad password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the signup form
type SignupRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	AgreeTerms      bool   `json:"agree_terms" binding:"required"`
}

// AuthStateResponse is the session's auth state and where the browser is
type AuthStateResponse struct {
	User            *identity.Identity `json:"user"`
	IsAuthenticated bool               `json:"is_authenticated"`
	Location        string             `json:"location"`
}

// RouteCheckResponse tells whether the session may open path
type RouteCheckResponse struct {
	Path       string `json:"path"`
	Protected  bool   `json:"protected"`
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func toAuthStateResponse(state identity.State, location string) AuthStateResponse {
	return AuthStateResponse{
		User:            state.Identity,
		IsAuthenticated: state.IsAuthenticated,
		Location:        location,
	}
}
