package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/modahub/storefront-api/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository returns a UserRepository using the given store.
func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{coll: s.db.Collection(collUsers)}
}

// Create inserts a new user. The unique index on email turns duplicate
// registrations into user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if _, err := r.coll.InsertOne(ctx, toUserDocument(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrEmailTaken
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

// GetByID returns the user with the given ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return toUserEntity(&doc), nil
}

// SetResetOTP stores a pending password-reset code and its expiry.
func (r *UserRepository) SetResetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reset_otp": otp, "otp_expires_at": expiresAt}},
	)
	if err != nil {
		return errors.Wrap(err, "set reset OTP")
	}
	if result.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash and clears any pending OTP in the
// same document update.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash},
			"$unset": bson.M{"reset_otp": "", "otp_expires_at": ""},
		},
	)
	if err != nil {
		return errors.Wrap(err, "update password")
	}
	if result.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
