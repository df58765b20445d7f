package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modahub/storefront-api/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by MongoDB. The user ID is
// the document key, so each user has at most one cart.
type CartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository returns a CartRepository using the given store.
func NewCartRepository(s *Store) *CartRepository {
	return &CartRepository{coll: s.db.Collection(collCarts)}
}

// Get returns the user's cart, or cart.ErrNotFound when none exists.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var doc cartDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrap(err, "find cart")
	}
	return toCartEntity(&doc), nil
}

// Upsert replaces the cart document, creating it when absent.
func (r *CartRepository) Upsert(ctx context.Context, c *cart.Cart) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": c.UserID},
		toCartDocument(c),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(err, "upsert cart")
	}
	return nil
}

// DeleteForUser removes the user's cart document. A missing cart is not an
// error.
func (r *CartRepository) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}
