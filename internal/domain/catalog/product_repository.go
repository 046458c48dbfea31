package catalog

import "context"

// ProductRepository reads the product catalog in its canonical order
type ProductRepository interface {
	FindAll(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id int) (*Product, error)
}
