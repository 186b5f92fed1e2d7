package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
)

const testAPIKey = "test-api-key"

// setupApp builds the full pipeline (error handler, API-key gate, routes)
// on top of the in-memory repository, mirroring the wiring in main.
func setupApp() (*fiber.App, *repositories.InMemoryProductRepository) {
	repo := repositories.NewInMemoryProductRepository()
	productService := services.NewProductService(repo, nil)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(middleware.APIKeyAuth(testAPIKey))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Product API! Go to /api/products to see all products.")
	})

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	return app, repo
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository, products []models.Product) {
	t.Helper()
	for i := range products {
		if err := repo.Create(context.Background(), &products[i]); err != nil {
			t.Fatalf("Failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("x-api-key", testAPIKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(raw, out))
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestWelcomeRoute(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "Welcome to the Product API! Go to /api/products to see all products.", string(raw))
}

func TestAPIKeyGateCoversEveryRoute(t *testing.T) {
	app, repo := setupApp()

	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/", ""},
		{http.MethodGet, "/api/products", ""},
		{http.MethodGet, "/api/products/some-id", ""},
		{http.MethodPost, "/api/products", `{"name":"Mug","price":9.5,"category":"kitchen"}`},
		{http.MethodPut, "/api/products/some-id", `{"name":"Mug","price":9.5,"category":"kitchen"}`},
		{http.MethodDelete, "/api/products/some-id", ""},
	}

	for _, route := range routes {
		var reader io.Reader
		if route.body != "" {
			reader = bytes.NewReader([]byte(route.body))
		}
		req := httptest.NewRequest(route.method, route.path, reader)
		if route.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", route.method, route.path)

		var body map[string]interface{}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "Forbidden: Invalid API Key", body["message"])
	}

	// Rejected requests never reach the store: the POST above must not
	// have persisted anything.
	all, err := repo.GetAll(context.Background(), "")
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateProduct(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodPost, "/api/products",
		`{"name":"Laptop","description":"High-performance laptop","price":1200,"category":"electronics"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	decodeJSON(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Laptop", created.Name)
	assert.Equal(t, 1200.0, created.Price)
	assert.Equal(t, "electronics", created.Category)
	assert.True(t, created.InStock, "inStock must default to true")

	// The product is retrievable by its new id
	resp = doRequest(t, app, http.MethodGet, "/api/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Product
	decodeJSON(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateProduct_ExplicitInStockFalse(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodPost, "/api/products",
		`{"name":"Coffee Maker","price":50,"category":"kitchen","inStock":false}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	decodeJSON(t, resp, &created)
	assert.False(t, created.InStock)
}

func TestCreateProduct_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		message string
	}{
		{
			name:    "missing name",
			payload: `{"price": 10, "category": "kitchen"}`,
			message: "Product name is required and must be a string.",
		},
		{
			name:    "zero price",
			payload: `{"name": "Mug", "price": 0, "category": "kitchen"}`,
			message: "Price must be a positive number.",
		},
		{
			name:    "negative price",
			payload: `{"name": "Mug", "price": -5, "category": "kitchen"}`,
			message: "Price must be a positive number.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, repo := setupApp()

			resp := doRequest(t, app, http.MethodPost, "/api/products", tc.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]interface{}
			decodeJSON(t, resp, &body)
			assert.Equal(t, tc.message, body["error"])

			// Store unchanged: no record persisted
			all, err := repo.GetAll(context.Background(), "")
			assert.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodGet, "/api/products/never-created", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Product not found", body["message"])
}

func TestListProducts(t *testing.T) {
	app, repo := setupApp()
	seedProductsForTest(t, repo, []models.Product{
		{Name: "Laptop", Price: 1200.0, Category: "electronics", InStock: true},
		{Name: "Smartphone", Price: 800.0, Category: "electronics", InStock: true},
		{Name: "Coffee Maker", Price: 50.0, Category: "kitchen", InStock: false},
	})

	resp := doRequest(t, app, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	decodeJSON(t, resp, &products)
	assert.Len(t, products, 3)

	// Category filter
	resp = doRequest(t, app, http.MethodGet, "/api/products?category=kitchen", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &products)
	assert.Len(t, products, 1)
	assert.Equal(t, "Coffee Maker", products[0].Name)
}

func TestListProducts_Paginated(t *testing.T) {
	app, repo := setupApp()

	products := make([]models.Product, 25)
	for i := range products {
		products[i] = models.Product{
			Name:     fmt.Sprintf("Product %02d", i+1),
			Price:    float64(i + 1),
			Category: "electronics",
			InStock:  true,
		}
	}
	seedProductsForTest(t, repo, products)

	resp := doRequest(t, app, http.MethodGet, "/api/products?page=2&limit=10", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page models.ProductPage
	decodeJSON(t, resp, &page)
	assert.Len(t, page.Products, 10)
	assert.Equal(t, int64(25), page.TotalProducts)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 10, page.PageSize)

	// Out-of-range page returns an empty page with correct counts
	resp = doRequest(t, app, http.MethodGet, "/api/products?page=9&limit=10", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &page)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(25), page.TotalProducts)
}

func TestSearchProducts(t *testing.T) {
	app, repo := setupApp()
	seedProductsForTest(t, repo, []models.Product{
		{Name: "Smartphone", Price: 800.0, Category: "electronics", InStock: true},
		{Name: "Headphones", Price: 150.0, Category: "electronics", InStock: true},
	})

	// Missing query param
	resp := doRequest(t, app, http.MethodGet, "/api/products/search", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Please provide a product name to search.", body["error"])

	// No match
	resp = doRequest(t, app, http.MethodGet, "/api/products/search?name=toaster", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decodeJSON(t, resp, &body)
	assert.Equal(t, "No matching products found.", body["message"])

	// Case-insensitive substring match
	resp = doRequest(t, app, http.MethodGet, "/api/products/search?name=PHONE", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decodeJSON(t, resp, &products)
	assert.Len(t, products, 2)
}

func TestCategoryStats(t *testing.T) {
	app, repo := setupApp()

	// Empty store yields an empty mapping
	resp := doRequest(t, app, http.MethodGet, "/api/products/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []models.CategoryStat
	decodeJSON(t, resp, &stats)
	assert.Empty(t, stats)

	seedProductsForTest(t, repo, []models.Product{
		{Name: "Laptop", Price: 1200.0, Category: "electronics", InStock: true},
		{Name: "Smartphone", Price: 800.0, Category: "electronics", InStock: true},
		{Name: "Coffee Maker", Price: 50.0, Category: "kitchen", InStock: false},
	})

	resp = doRequest(t, app, http.MethodGet, "/api/products/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &stats)
	assert.Len(t, stats, 2)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, 3, total)
}

func TestUpdateProduct(t *testing.T) {
	app, repo := setupApp()

	product := models.Product{Name: "Laptop", Description: "16GB RAM", Price: 1200.0, Category: "electronics", InStock: true}
	seedProductsForTest(t, repo, []models.Product{product})

	all, err := repo.GetAll(context.Background(), "")
	assert.NoError(t, err)
	id := all[0].ID

	resp := doRequest(t, app, http.MethodPut, "/api/products/"+id,
		`{"name":"Laptop Pro","price":1500,"category":"electronics"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Product
	decodeJSON(t, resp, &updated)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, 1500.0, updated.Price)
	// Fields absent from the body are untouched
	assert.Equal(t, "16GB RAM", updated.Description)
	assert.True(t, updated.InStock)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodPut, "/api/products/never-created",
		`{"name":"Ghost","price":1,"category":"void"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Product not found", body["message"])
}

func TestUpdateProduct_ValidationFailure(t *testing.T) {
	app, repo := setupApp()
	seedProductsForTest(t, repo, []models.Product{
		{Name: "Laptop", Price: 1200.0, Category: "electronics", InStock: true},
	})

	all, err := repo.GetAll(context.Background(), "")
	assert.NoError(t, err)
	id := all[0].ID

	resp := doRequest(t, app, http.MethodPut, "/api/products/"+id,
		`{"name":"Laptop","price":-1,"category":"electronics"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Price must be a positive number.", body["error"])

	// Store unchanged
	current, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, 1200.0, current.Price)
}

func TestDeleteProduct_ThenGet(t *testing.T) {
	app, repo := setupApp()
	seedProductsForTest(t, repo, []models.Product{
		{Name: "Laptop", Price: 1200.0, Category: "electronics", InStock: true},
	})

	all, err := repo.GetAll(context.Background(), "")
	assert.NoError(t, err)
	id := all[0].ID

	resp := doRequest(t, app, http.MethodDelete, "/api/products/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Product deleted successfully", body["message"])

	// The id no longer resolves
	resp = doRequest(t, app, http.MethodGet, "/api/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting again reports not found
	resp = doRequest(t, app, http.MethodDelete, "/api/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decodeJSON(t, resp, &body)
	assert.Equal(t, "Product not found", body["message"])
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	app, _ := setupApp()

	resp := doRequest(t, app, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	assert.Contains(t, body, "error")
}
