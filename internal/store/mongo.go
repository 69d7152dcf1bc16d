package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the repositories.
const (
	UsersCollection      = "users"
	StudentsCollection   = "students"
	AttendanceCollection = "attendance"
	ClassesCollection    = "classes"
)

// Mongo wraps the MongoDB client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}

// Healthy verifies MongoDB connectivity.
func (m *Mongo) Healthy(ctx context.Context) bool {
	if m == nil || m.Client == nil {
		return false
	}
	return m.Client.Ping(ctx, nil) == nil
}

// EnsureIndexes creates the indexes the invariants rely on. Uniqueness of
// usernames, emails and roll numbers is arbitrated here, not by
// check-then-insert in application code.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	users := m.DB.Collection(UsersCollection)
	students := m.DB.Collection(StudentsCollection)
	attendance := m.DB.Collection(AttendanceCollection)

	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
		name  string
	}{
		{
			coll: users,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			name: "users.username",
		},
		{
			// Sparse: federation-only accounts created without an email
			// must not collide on a missing field.
			coll: users,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			name: "users.email",
		},
		{
			coll: students,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "roll", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			name: "students.roll",
		},
		{
			coll: attendance,
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "timestamp", Value: -1}},
			},
			name: "attendance.student_id+timestamp",
		},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateOne(ctx, spec.model); err != nil {
			return err
		}
		log.WithField("index", spec.name).Debug("index ensured")
	}
	return nil
}
