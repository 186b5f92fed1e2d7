package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"productapi/internal/apperrors"
	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
// The search and stats routes must come before /:id so they are not
// captured by the id parameter.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/stats", h.HandleCategoryStats)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", middleware.ValidateProduct(), h.HandleCreateProduct)
	productRoutes.Put("/:id", middleware.ValidateProduct(), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts retrieves products, optionally filtered by category.
// When page or limit is supplied the paginated envelope is returned
// instead of the plain list.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	if c.Query("page") != "" || c.Query("limit") != "" {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}

		pageResult, err := h.service.GetProductsPaged(c.Context(), page, limit)
		if err != nil {
			log.Printf("Error getting products page %d: %v", page, err)
			return err
		}
		return c.JSON(pageResult)
	}

	products, err := h.service.GetAllProducts(c.Context(), c.Query("category"))
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return err
	}
	return c.JSON(products)
}

// HandleSearchProducts finds products by a case-insensitive name fragment.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please provide a product name to search.",
		})
	}

	products, err := h.service.SearchProducts(c.Context(), name)
	if err != nil {
		log.Printf("Error searching products for %q: %v", name, err)
		return err
	}

	if len(products) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No matching products found.",
		})
	}
	return c.JSON(products)
}

// HandleCategoryStats returns the product count per category.
func (h *ProductHandler) HandleCategoryStats(c *fiber.Ctx) error {
	stats, err := h.service.CategoryStats(c.Context())
	if err != nil {
		log.Printf("Error getting category stats: %v", err)
		return err
	}
	return c.JSON(stats)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.Context(), id)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error getting product by ID %s: %v", id, err)
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.service.CreateProduct(c.Context(), req)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("Error creating product: %v", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies the supplied fields to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	product, err := h.service.UpdateProduct(c.Context(), id, req)
	if err != nil {
		switch {
		case apperrors.IsKind(err, apperrors.KindNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		case apperrors.IsKind(err, apperrors.KindValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Printf("Error updating product %s: %v", id, err)
		return err
	}

	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.service.DeleteProduct(c.Context(), id)
	if err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return err
	}

	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
