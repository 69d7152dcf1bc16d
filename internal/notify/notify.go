package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"facesense/internal/apperr"
	"facesense/internal/queue"
)

// MessageType marks notification payloads on the queue.
const MessageType = "notification"

// Service is the notification placeholder: it accepts any payload and
// hands it to the queue. Delivery is fire-and-forget.
type Service struct {
	q queue.Queue
}

// NewService creates a notifier over the given queue.
func NewService(q queue.Queue) *Service {
	return &Service{q: q}
}

// Send enqueues the payload and returns the acknowledgement id.
func (s *Service) Send(ctx context.Context, payload json.RawMessage) (string, error) {
	id := uuid.NewString()
	msg := queue.Message{ID: id, Type: MessageType, Body: payload}
	if err := s.q.Publish(ctx, msg); err != nil {
		return "", apperr.Unavailablef("notification enqueue failed: %v", err)
	}
	return id, nil
}
