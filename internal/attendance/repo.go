package attendance

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"facesense/internal/apperr"
	"facesense/internal/store"
)

// Repository persists attendance events in the attendance collection.
// Events are append-only; nothing here mutates or deletes them.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository creates a repo over the given database.
func NewRepository(db *store.Mongo) *Repository {
	return &Repository{coll: db.DB.Collection(store.AttendanceCollection)}
}

// Insert writes a new event and returns it with its assigned id.
func (r *Repository) Insert(ctx context.Context, evt Event) (Event, error) {
	res, err := r.coll.InsertOne(ctx, evt)
	if err != nil {
		return Event{}, apperr.Unavailablef("attendance insert failed: %v", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		evt.ID = id
	}
	return evt, nil
}

// List returns events in natural order with pagination.
func (r *Repository) List(ctx context.Context, skip, limit int64) ([]Event, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	return r.find(ctx, bson.M{}, opts)
}

// ListBetween returns events with timestamp in [from, to).
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": from, "$lt": to}}
	return r.find(ctx, filter, options.Find())
}

// ListByStudent returns all events referencing the given student.
func (r *Repository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]Event, error) {
	return r.find(ctx, bson.M{"student_id": studentID}, options.Find())
}

// Count returns the total number of events.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, apperr.Unavailablef("attendance count failed: %v", err)
	}
	return n, nil
}

func (r *Repository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Event, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Unavailablef("attendance query failed: %v", err)
	}
	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, apperr.Unavailablef("attendance query failed: %v", err)
	}
	return events, nil
}
