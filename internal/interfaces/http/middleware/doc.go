// Package middleware holds the gin middleware of the storefront HTTP server.
package middleware
