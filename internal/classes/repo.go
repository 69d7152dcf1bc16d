package classes

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"facesense/internal/apperr"
	"facesense/internal/store"
)

// Class groups students under a label and carries a headcount.
type Class struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name     string             `json:"name" bson:"name"`
	Students int                `json:"students" bson:"students"`
}

// Repository persists classes in the classes collection.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository creates a repo over the given database.
func NewRepository(db *store.Mongo) *Repository {
	return &Repository{coll: db.DB.Collection(store.ClassesCollection)}
}

// List returns all classes.
func (r *Repository) List(ctx context.Context) ([]Class, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Unavailablef("class list failed: %v", err)
	}
	out := []Class{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Unavailablef("class list failed: %v", err)
	}
	return out, nil
}

// Insert stores a new class with a zero headcount.
func (r *Repository) Insert(ctx context.Context, name string) (Class, error) {
	if name == "" {
		return Class{}, apperr.Invalidf("class name is required")
	}
	cls := Class{Name: name, Students: 0}
	res, err := r.coll.InsertOne(ctx, cls)
	if err != nil {
		return Class{}, apperr.Unavailablef("class insert failed: %v", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		cls.ID = id
	}
	return cls, nil
}

// Get returns one class by id.
func (r *Repository) Get(ctx context.Context, id string) (Class, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Class{}, apperr.Invalidf("invalid class ID format")
	}
	var cls Class
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&cls)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Class{}, apperr.NotFoundf("class not found")
	}
	if err != nil {
		return Class{}, apperr.Unavailablef("class lookup failed: %v", err)
	}
	return cls, nil
}

// Delete removes a class by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Invalidf("invalid class ID format")
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Unavailablef("class delete failed: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("class not found")
	}
	return nil
}
