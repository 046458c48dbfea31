package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// SortOrder selects how a product listing is ordered
type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortNewest    SortOrder = "newest"
)

// ParseSortOrder validates a sort name; empty means featured
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.TrimSpace(s)) {
	case "", SortFeatured:
		return SortFeatured, nil
	case SortPriceLow:
		return SortPriceLow, nil
	case SortPriceHigh:
		return SortPriceHigh, nil
	case SortNewest:
		return SortNewest, nil
	default:
		return "", ErrInvalidSort
	}
}

// Query filters and orders a product listing. Nil price bounds are open.
type Query struct {
	Search     string
	Categories []string
	MinPrice   *int64
	MaxPrice   *int64
	Sort       SortOrder
}

// Validate checks the query is satisfiable
func (q Query) Validate() error {
	if _, err := ParseSortOrder(string(q.Sort)); err != nil {
		return err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return ErrInvalidRange
	}
	return nil
}

// Matches reports whether p passes every filter in q
func (q Query) Matches(p Product) bool {
	if !p.MatchesSearch(q.Search) {
		return false
	}
	if len(q.Categories) > 0 && !slices.Contains(q.Categories, p.Category) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	return true
}

// Apply filters products and orders the result. The input is not modified.
// Featured keeps the input order; ties in price keep input order too.
func (q Query) Apply(products []Product) ([]Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Matches(p) {
			out = append(out, p)
		}
	}

	sortOrder, _ := ParseSortOrder(string(q.Sort))
	switch sortOrder {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortNewest:
		slices.SortStableFunc(out, func(a, b Product) int { return cmp.Compare(b.ID, a.ID) })
	}
	return out, nil
}

// Related returns up to limit products sharing p's category, excluding p, in
// catalog order.
func Related(products []Product, p Product, limit int) []Product {
	out := make([]Product, 0, limit)
	for _, candidate := range products {
		if len(out) >= limit {
			break
		}
		if candidate.ID == p.ID || candidate.Category != p.Category {
			continue
		}
		out = append(out, candidate)
	}
	return out
}
