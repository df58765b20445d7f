package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modahub/storefront-api/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by MongoDB.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository returns a ProductRepository using the given store.
func NewProductRepository(s *Store) *ProductRepository {
	return &ProductRepository{coll: s.db.Collection(collProducts)}
}

// List returns all products, newest first, optionally filtered by category.
func (r *ProductRepository) List(ctx context.Context, category string) ([]product.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	var products []product.Product
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		p, err := toProductEntity(&doc)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find product %q", id)
	}
	return toProductEntity(&doc)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	doc, err := toProductDocument(p)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrapf(err, "insert product %q", p.ID)
	}
	return nil
}

// Delete removes a product. It returns product.ErrNotFound when no document
// matched.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	if result.DeletedCount == 0 {
		return product.ErrNotFound
	}
	return nil
}
