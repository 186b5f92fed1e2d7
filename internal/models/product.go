package models

// Product represents a product in the catalog. The uuid string doubles as
// the Mongo document key, so lookups are always by the public id.
type Product struct {
	ID          string  `json:"id" bson:"_id" validate:"omitempty,uuid"`
	Name        string  `json:"name" bson:"name" validate:"required"`
	Description string  `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Price       float64 `json:"price" bson:"price" validate:"required,gt=0"`
	Category    string  `json:"category" bson:"category" validate:"required"`
	InStock     bool    `json:"inStock" bson:"inStock"`
}

// CreateProductRequest is the body of POST /api/products. InStock is a
// pointer so the true default applies only when the field is omitted.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     *bool   `json:"inStock"`
}

// UpdateProductRequest is the body of PUT /api/products/:id. Only non-nil
// fields are written; the product id is never writable.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

// ProductPage is the paginated response envelope.
type ProductPage struct {
	TotalProducts int64     `json:"totalProducts"`
	TotalPages    int       `json:"totalPages"`
	CurrentPage   int       `json:"currentPage"`
	PageSize      int       `json:"pageSize"`
	Products      []Product `json:"products"`
}

// CategoryStat is one bucket of the category aggregation. The keys mirror
// what Mongo's $group stage emits and are kept as-is on the wire.
type CategoryStat struct {
	Category string `json:"_id" bson:"_id"`
	Count    int    `json:"count" bson:"count"`
}
