// Package catalog serves product listings from the catalog fixtures.
package catalog

import (
	"context"

	"github.com/xgrltd/storefront/internal/domain/catalog"
)

// ProductService handles catalog queries
type ProductService struct {
	repo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(repo catalog.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// List returns the products matching req in the requested order
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (ProductListResponse, error) {
	query := req.ToQuery()
	if err := query.Validate(); err != nil {
		return ProductListResponse{}, err
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return ProductListResponse{}, err
	}
	matched, err := query.Apply(products)
	if err != nil {
		return ProductListResponse{}, err
	}

	sortOrder, _ := catalog.ParseSortOrder(req.Sort)
	return ProductListResponse{
		Products: ToProductResponses(matched),
		Total:    len(matched),
		Sort:     string(sortOrder),
	}, nil
}

// Featured returns the first n products in catalog order
func (s *ProductService) Featured(ctx context.Context, n int) ([]ProductResponse, error) {
	if n <= 0 {
		n = catalog.DefaultFeaturedLimit
	}
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > n {
		products = products[:n]
	}
	return ToProductResponses(products), nil
}

// Get returns one product and up to four related products
func (s *ProductService) Get(ctx context.Context, id int) (ProductDetailResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ProductDetailResponse{}, err
	}
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return ProductDetailResponse{}, err
	}

	return ProductDetailResponse{
		Product: ToProductResponse(*product),
		Related: ToProductResponses(catalog.Related(products, *product, catalog.DefaultRelatedLimit)),
	}, nil
}

// Categories returns the fixed category list with product counts.
// Categories without products are included with a zero count.
func (s *ProductService) Categories(ctx context.Context) ([]CategoryResponse, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(catalog.Categories))
	for _, p := range products {
		counts[p.Category]++
	}
	out := make([]CategoryResponse, len(catalog.Categories))
	for i, name := range catalog.Categories {
		out[i] = CategoryResponse{Name: name, Count: counts[name]}
	}
	return out, nil
}
