package repositories

import (
	"context"

	"productapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll returns every product, optionally restricted to one category.
	GetAll(ctx context.Context, category string) ([]models.Product, error)
	// GetPaged returns one page of products with count metadata. Pages
	// beyond the end yield an empty page with correct counts.
	GetPaged(ctx context.Context, page, limit int) (*models.ProductPage, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// SearchByName matches nameFragment case-insensitively as a substring
	// of the product name. No match is an empty slice, not an error.
	SearchByName(ctx context.Context, nameFragment string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update overwrites only the supplied fields, keyed strictly by the
	// product id, and returns the updated document.
	Update(ctx context.Context, id string, fields models.UpdateProductRequest) (*models.Product, error)
	// Delete reports whether a record existed and was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// CountByCategory returns one bucket per category present in the store.
	CountByCategory(ctx context.Context) ([]models.CategoryStat, error)
}
