package student

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student represents a person tracked by the recognizer. Roll is the
// human-assigned identifier, distinct from the storage id.
type Student struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Roll      string             `json:"roll" bson:"roll"`
	ClassName string             `json:"class_name" bson:"class_name"`
	Photo     string             `json:"photo,omitempty" bson:"photo,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Input is the mutable subset accepted on create and update.
type Input struct {
	Name      string `json:"name" binding:"required"`
	Roll      string `json:"roll" binding:"required"`
	ClassName string `json:"class_name" binding:"required"`
	Photo     string `json:"photo"`
}
