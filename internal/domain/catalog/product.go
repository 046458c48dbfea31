package catalog

import (
	"strings"

	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

var (
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	ErrInvalidSort     = shared.NewDomainError("INVALID_SORT", "Sort must be one of featured, price-low, price-high, newest")
	ErrInvalidRange    = shared.NewDomainError("INVALID_PRICE_RANGE", "Minimum price cannot exceed maximum price")
)

// Categories is the fixed category list shown in the product filters. Some
// categories have no products yet.
var Categories = []string{"Electronics", "Fashion", "Home & Kitchen", "Beauty", "Sports", "Books"}

// DefaultRelatedLimit caps the related products shown on a detail page
const DefaultRelatedLimit = 4

// DefaultFeaturedLimit is how many products the home page features
const DefaultFeaturedLimit = 4

// Product is a catalog entry. Price is whole Naira.
type Product struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Price    int64  `json:"price" yaml:"price"`
	Image    string `json:"image" yaml:"image"`
	Category string `json:"category" yaml:"category"`
}

// FormattedPrice renders the price for display
func (p Product) FormattedPrice() string {
	return valueobject.FormatNaira(p.Price)
}

// InCategory reports a case-sensitive category match
func (p Product) InCategory(category string) bool {
	return p.Category == category
}

// MatchesSearch reports whether term is a case-insensitive substring of the
// product name. An empty term matches everything.
func (p Product) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term))
}

// IsKnownCategory reports whether category is in the fixed list
func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
