package identity

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"facesense/internal/apperr"
	"facesense/internal/store"
)

// Repository persists accounts in the users collection.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository creates a repo over the given database.
func NewRepository(db *store.Mongo) *Repository {
	return &Repository{coll: db.DB.Collection(store.UsersCollection)}
}

// FindByUsername returns the account with that login name, or nil when absent.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByEmail returns the account with that email, or nil when absent.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Unavailablef("user lookup failed: %v", err)
	}
	return &u, nil
}

// Insert stores a new account. A unique-index violation on username or
// email is the authoritative conflict signal.
func (r *Repository) Insert(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflictf("user with this username or email already exists")
	}
	if err != nil {
		return apperr.Unavailablef("user insert failed: %v", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}
