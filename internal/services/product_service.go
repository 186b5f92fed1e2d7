package services

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"

	"productapi/internal/apperrors"
	"productapi/internal/models"
	"productapi/internal/repositories"
)

// ProductEventPublisher publishes product lifecycle events. Publishing is
// best-effort; failures are logged and never surfaced to the caller.
type ProductEventPublisher interface {
	PublishProductEvent(action string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher ProductEventPublisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. The publisher may be nil,
// in which case no events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher ProductEventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// GetAllProducts retrieves all products, optionally filtered by category.
func (s *ProductService) GetAllProducts(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.GetAll(ctx, category)
}

// GetProductsPaged retrieves one page of products with count metadata.
func (s *ProductService) GetProductsPaged(ctx context.Context, page, limit int) (*models.ProductPage, error) {
	return s.repo.GetPaged(ctx, page, limit)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// SearchProducts finds products whose name contains nameFragment.
func (s *ProductService) SearchProducts(ctx context.Context, nameFragment string) ([]models.Product, error) {
	return s.repo.SearchByName(ctx, nameFragment)
}

// CreateProduct creates a new product. Invariants are re-checked here even
// though the HTTP validation middleware runs first, so no path into the
// store can persist an invalid product.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		InStock:     inStock,
	}

	if err := s.validate.Struct(product); err != nil {
		return nil, apperrors.Validation(invariantMessage(err))
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// UpdateProduct applies the supplied fields to an existing product. The id
// itself is immutable.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	if req.Name != nil && *req.Name == "" {
		return nil, apperrors.Validation("Product name is required and must be a string.")
	}
	if req.Price != nil && *req.Price <= 0 {
		return nil, apperrors.Validation("Price must be a positive number.")
	}
	if req.Category != nil && *req.Category == "" {
		return nil, apperrors.Validation("Category is required and must be a string.")
	}

	product, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// DeleteProduct deletes a product by its ID and reports whether a record
// existed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishEvent("product.deleted", &models.Product{ID: id})
	}
	return deleted, nil
}

// CategoryStats returns the product count per category.
func (s *ProductService) CategoryStats(ctx context.Context) ([]models.CategoryStat, error) {
	return s.repo.CountByCategory(ctx)
}

func (s *ProductService) publishEvent(action string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"id":       product.ID,
		"name":     product.Name,
		"price":    product.Price,
		"category": product.Category,
	}
	if err := s.publisher.PublishProductEvent(action, payload); err != nil {
		log.Printf("Failed to publish %s event for product %s: %v", action, product.ID, err)
	}
}

// invariantMessage maps the first failed struct validation to the message
// the HTTP layer uses for the same rule. Fields are checked in struct
// order, so the first failure wins, matching the middleware.
func invariantMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		switch validationErrors[0].Field() {
		case "Name":
			return "Product name is required and must be a string."
		case "Price":
			return "Price must be a positive number."
		case "Category":
			return "Category is required and must be a string."
		}
	}
	return "Invalid product data."
}
