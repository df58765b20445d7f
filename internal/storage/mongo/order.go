package mongo

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modahub/storefront-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by MongoDB.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository using the given store.
func NewOrderRepository(s *Store) *OrderRepository {
	return &OrderRepository{coll: s.db.Collection(collOrders)}
}

// Create inserts a new order. The document carries the order and its initial
// history entry, so both are written in one atomic insert.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	doc, err := toOrderDocument(o)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find order %q", id)
	}
	return toOrderEntity(&doc)
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]order.Order, error) {
	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	defer cursor.Close(ctx)

	var orders []order.Order
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode order")
		}
		o, err := toOrderEntity(&doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return orders, nil
}

// AppendStatus sets the status field and pushes the history entry in a single
// findAndModify, so no reader ever observes one without the other. Racing
// transitions both land: $push appends are atomic per document and commute.
func (r *OrderRepository) AppendStatus(ctx context.Context, id string, entry order.StatusEntry) (*order.Order, error) {
	update := bson.M{
		"$set": bson.M{"status": string(entry.Status)},
		"$push": bson.M{"status_history": statusEntryDocument{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
		}},
	}

	var doc orderDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "update order %q", id)
	}
	return toOrderEntity(&doc)
}
