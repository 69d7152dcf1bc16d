package student

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"facesense/internal/apperr"
	"facesense/internal/store"
)

// Repository persists students in the students collection.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository creates a repo over the given database.
func NewRepository(db *store.Mongo) *Repository {
	return &Repository{coll: db.DB.Collection(store.StudentsCollection)}
}

// Insert stores a new student. A duplicate roll number is a conflict.
func (r *Repository) Insert(ctx context.Context, in Input) (Student, error) {
	st := Student{
		Name:      in.Name,
		Roll:      in.Roll,
		ClassName: in.ClassName,
		Photo:     in.Photo,
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.coll.InsertOne(ctx, st)
	if mongo.IsDuplicateKeyError(err) {
		return Student{}, apperr.Conflictf("student with roll %q already exists", in.Roll)
	}
	if err != nil {
		return Student{}, apperr.Unavailablef("student insert failed: %v", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		st.ID = id
	}
	return st, nil
}

// List returns students in natural order with pagination.
func (r *Repository) List(ctx context.Context, skip, limit int64) ([]Student, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Unavailablef("student list failed: %v", err)
	}
	students := []Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, apperr.Unavailablef("student list failed: %v", err)
	}
	return students, nil
}

// Get returns a student by its storage id.
func (r *Repository) Get(ctx context.Context, id string) (Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return Student{}, err
	}
	var st Student
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Student{}, apperr.NotFoundf("student not found")
	}
	if err != nil {
		return Student{}, apperr.Unavailablef("student lookup failed: %v", err)
	}
	return st, nil
}

// FindByRoll returns the student with that roll number, or nil when absent.
func (r *Repository) FindByRoll(ctx context.Context, roll string) (*Student, error) {
	var st Student
	err := r.coll.FindOne(ctx, bson.M{"roll": roll}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Unavailablef("student lookup failed: %v", err)
	}
	return &st, nil
}

// Update replaces the mutable fields of a student.
func (r *Repository) Update(ctx context.Context, id string, in Input) (Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return Student{}, err
	}
	patch := bson.M{"$set": bson.M{
		"name":       in.Name,
		"roll":       in.Roll,
		"class_name": in.ClassName,
		"photo":      in.Photo,
	}}
	res, err := r.coll.UpdateByID(ctx, oid, patch)
	if mongo.IsDuplicateKeyError(err) {
		return Student{}, apperr.Conflictf("student with roll %q already exists", in.Roll)
	}
	if err != nil {
		return Student{}, apperr.Unavailablef("student update failed: %v", err)
	}
	if res.MatchedCount == 0 {
		return Student{}, apperr.NotFoundf("student not found")
	}
	return r.Get(ctx, id)
}

// SetPhoto stores the photo reference for a student.
func (r *Repository) SetPhoto(ctx context.Context, id, photoURL string) (Student, error) {
	oid, err := parseID(id)
	if err != nil {
		return Student{}, err
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"photo": photoURL}})
	if err != nil {
		return Student{}, apperr.Unavailablef("student update failed: %v", err)
	}
	if res.MatchedCount == 0 {
		return Student{}, apperr.NotFoundf("student not found")
	}
	return r.Get(ctx, id)
}

// Delete removes a student by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.Unavailablef("student delete failed: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("student not found")
	}
	return nil
}

// Count returns the total number of students.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Unavailablef("student count failed: %v", err)
	}
	return n, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalidf("invalid student ID format")
	}
	return oid, nil
}
