package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"productapi/internal/apperrors"
	"productapi/internal/models"
)

// MongoProductRepository is a mongo-driver implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(collection *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{
		collection: collection,
	}
}

// GetAll retrieves all products, optionally filtered by category.
func (r *MongoProductRepository) GetAll(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to get all products: %v", err))
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to decode products: %v", err))
	}
	return products, nil
}

// GetPaged retrieves one page of products along with count metadata.
func (r *MongoProductRepository) GetPaged(ctx context.Context, page, limit int) (*models.ProductPage, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to count products: %v", err))
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to get products page %d: %v", page, err))
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to decode products page %d: %v", page, err))
	}

	return &models.ProductPage{
		TotalProducts: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage:   page,
		PageSize:      limit,
		Products:      products,
	}, nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to get product by ID %s: %v", id, err))
	}
	return &product, nil
}

// SearchByName finds products whose name contains nameFragment,
// case-insensitively.
func (r *MongoProductRepository) SearchByName(ctx context.Context, nameFragment string) ([]models.Product, error) {
	filter := bson.M{
		"name": bson.M{"$regex": nameFragment, "$options": "i"},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to search products: %v", err))
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to decode search results: %v", err))
	}
	return products, nil
}

// Create inserts a new product, assigning a uuid when the ID is empty.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return apperrors.Unavailable(fmt.Sprintf("failed to create product: %v", err))
	}
	return nil
}

// Update applies the supplied fields to the product with the given ID and
// returns the updated document.
func (r *MongoProductRepository) Update(ctx context.Context, id string, fields models.UpdateProductRequest) (*models.Product, error) {
	set := bson.M{}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Price != nil {
		set["price"] = *fields.Price
	}
	if fields.Category != nil {
		set["category"] = *fields.Category
	}
	if fields.InStock != nil {
		set["inStock"] = *fields.InStock
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := r.collection.
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to update product %s: %v", id, err))
	}
	return &updated, nil
}

// Delete removes the product with the given ID and reports whether a
// record existed.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, apperrors.Unavailable(fmt.Sprintf("failed to delete product %s: %v", id, err))
	}
	return res.DeletedCount > 0, nil
}

// CountByCategory groups products by category and counts each bucket.
func (r *MongoProductRepository) CountByCategory(ctx context.Context) ([]models.CategoryStat, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to aggregate category stats: %v", err))
	}
	defer cursor.Close(ctx)

	stats := []models.CategoryStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, apperrors.Unavailable(fmt.Sprintf("failed to decode category stats: %v", err))
	}
	return stats, nil
}
