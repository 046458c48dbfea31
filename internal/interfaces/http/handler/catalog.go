package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/xgrltd/storefront/internal/application/catalog"
)

// CatalogHandler serves the product catalog
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{productService: productService}
}

// ListProducts filters and sorts the catalog.
// GET /api/v1/catalog/products?search=&category=&min_price=&max_price=&sort=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req catalogapp.ListProductsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp, resp.Total)
}

// Featured returns the first products of the catalog.
// GET /api/v1/catalog/products/featured?limit=
func (h *CatalogHandler) Featured(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.BadRequest(c, "limit must be an integer")
			return
		}
		limit = n
	}
	products, err := h.productService.Featured(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetProduct returns a product with related products from its category.
// GET /api/v1/catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be an integer")
		return
	}
	resp, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Categories returns the filter categories with product counts.
// GET /api/v1/catalog/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
