package identity

import "strings"

// Navigation destinations used by the auth flow
const (
	HomePath            = "/"
	LoginPath           = "/login"
	SignupPath          = "/signup"
	DashboardPath       = "/dashboard"
	CheckoutSuccessPath = "/checkout/success"
)

// protectedPrefixes are the routes that need an authenticated session.
var protectedPrefixes = []string{"/dashboard", "/products", "/cart", "/checkout"}

// ProtectedPrefixes returns a copy of the protected route prefixes
func ProtectedPrefixes() []string {
	out := make([]string, len(protectedPrefixes))
	copy(out, protectedPrefixes)
	return out
}

// IsRouteProtected reports whether path equals a protected prefix or is
// nested below one. "/cartoons" is not below "/cart".
func IsRouteProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// GuardRedirect returns where a visit to path must be redirected, or "" when
// the visit may proceed.
func GuardRedirect(path string, state State) string {
	if IsRouteProtected(path) && !state.IsAuthenticated {
		return LoginPath
	}
	return ""
}
