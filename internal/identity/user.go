package identity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a system account. HashedPassword is empty for accounts
// created through federated login.
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty"`
	HashedPassword string             `json:"-" bson:"hashed_password"`
	Role           string             `json:"role" bson:"role"`
	FullName       string             `json:"full_name,omitempty" bson:"full_name,omitempty"`
	PictureURL     string             `json:"picture_url,omitempty" bson:"picture_url,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// DefaultRole is assigned when registration does not name one.
const DefaultRole = "teacher"
