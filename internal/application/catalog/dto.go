package catalog

import (
	"github.com/xgrltd/storefront/internal/domain/catalog"
)

// ListProductsRequest holds the product listing filters from the query string
type ListProductsRequest struct {
	Search     string   `form:"search" binding:"max=100"`
	Categories []string `form:"category"`
	MinPrice   *int64   `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice   *int64   `form:"max_price" binding:"omitempty,min=0"`
	Sort       string   `form:"sort" binding:"omitempty,oneof=featured price-low price-high newest"`
}

// ToQuery converts the request into a catalog query
func (r ListProductsRequest) ToQuery() catalog.Query {
	return catalog.Query{
		Search:     r.Search,
		Categories: r.Categories,
		MinPrice:   r.MinPrice,
		MaxPrice:   r.MaxPrice,
		Sort:       catalog.SortOrder(r.Sort),
	}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	FormattedPrice string `json:"formatted_price"`
	Image          string `json:"image"`
	Category       string `json:"category"`
}

// ProductListResponse is a filtered product listing
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Sort     string            `json:"sort"`
}

// ProductDetailResponse is a product with its related products
type ProductDetailResponse struct {
	Product ProductResponse   `json:"product"`
	Related []ProductResponse `json:"related"`
}

// CategoryResponse is a filter category with its product count
type CategoryResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ToProductResponse converts a domain Product to a response
func ToProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice(),
		Image:          p.Image,
		Category:       p.Category,
	}
}

// ToProductResponses converts products, keeping their order
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
