package repositories

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"productapi/internal/apperrors"
	"productapi/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository. It keeps insertion order so listing and pagination are
// deterministic, which the tests rely on.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
	order    []string
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products in insertion order, optionally filtered by
// category.
func (r *InMemoryProductRepository) GetAll(ctx context.Context, category string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if category != "" && p.Category != category {
			continue
		}
		productList = append(productList, p)
	}
	return productList, nil
}

// GetPaged returns one page of products with count metadata.
func (r *InMemoryProductRepository) GetPaged(ctx context.Context, page, limit int) (*models.ProductPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]models.Product, 0, end-start)
	for _, id := range r.order[start:end] {
		items = append(items, r.products[id])
	}

	return &models.ProductPage{
		TotalProducts: int64(total),
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage:   page,
		PageSize:      limit,
		Products:      items,
	}, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("Product not found")
	}
	return &product, nil
}

// SearchByName matches nameFragment case-insensitively against product names.
func (r *InMemoryProductRepository) SearchByName(ctx context.Context, nameFragment string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fragment := strings.ToLower(nameFragment)
	matches := []models.Product{}
	for _, id := range r.order {
		p := r.products[id]
		if strings.Contains(strings.ToLower(p.Name), fragment) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Create adds a new product, assigning a uuid when the ID is empty.
func (r *InMemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

// Update applies the supplied fields to an existing product.
func (r *InMemoryProductRepository) Update(ctx context.Context, id string, fields models.UpdateProductRequest) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("Product not found")
	}

	if fields.Name != nil {
		product.Name = *fields.Name
	}
	if fields.Description != nil {
		product.Description = *fields.Description
	}
	if fields.Price != nil {
		product.Price = *fields.Price
	}
	if fields.Category != nil {
		product.Category = *fields.Category
	}
	if fields.InStock != nil {
		product.InStock = *fields.InStock
	}

	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// CountByCategory counts products per category, buckets ordered by first
// appearance of the category.
func (r *InMemoryProductRepository) CountByCategory(ctx context.Context) ([]models.CategoryStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	categories := []string{}
	for _, id := range r.order {
		category := r.products[id].Category
		if _, seen := counts[category]; !seen {
			categories = append(categories, category)
		}
		counts[category]++
	}

	stats := make([]models.CategoryStat, 0, len(categories))
	for _, category := range categories {
		stats = append(stats, models.CategoryStat{Category: category, Count: counts[category]})
	}
	return stats, nil
}
