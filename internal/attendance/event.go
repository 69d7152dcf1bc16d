package attendance

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultStatus is recorded when a mark request carries no status.
const DefaultStatus = "Present"

// Event is one observed presence. StudentName and Roll are snapshots taken
// at write time; later student edits do not touch past events.
type Event struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID   primitive.ObjectID `json:"student_id" bson:"student_id"`
	StudentName string             `json:"student_name" bson:"student_name"`
	Roll        string             `json:"roll" bson:"roll"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	Status      string             `json:"status" bson:"status"`
	Confidence  *float64           `json:"confidence,omitempty" bson:"confidence,omitempty"`
}
