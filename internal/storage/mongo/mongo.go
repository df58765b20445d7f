// Package mongo implements the domain repositories over MongoDB. Each
// aggregate lives in its own collection and is mutated only through
// single-document updates, so the driver's per-document atomicity carries the
// status+history contract without application-level locking.
package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers    = "users"
	collProducts = "products"
	collCarts    = "carts"
	collOrders   = "orders"
)

// Store holds the database handle shared by all repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, pings it, and ensures indexes.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to MongoDB")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, errors.Wrap(err, "ping MongoDB")
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		return nil, errors.Wrap(err, "create indexes")
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "users email index")
	}

	_, err = s.db.Collection(collOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(err, "orders user index")
	}
	return nil
}

// Ping verifies connectivity; used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(disconnectCtx)
}
