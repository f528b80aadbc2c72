package repositories

import (
	"sort"
	"sync"

	"scribbles/internal/apperror"
	"scribbles/internal/models"

	"github.com/google/uuid"
)

// MockMessageRepository is an in-memory implementation of MessageRepository.
type MockMessageRepository struct {
	messages map[string]models.Message
	mu       sync.RWMutex
}

// NewMockMessageRepository creates a new instance of MockMessageRepository.
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[string]models.Message),
	}
}

// Append stores a delivered message.
func (r *MockMessageRepository) Append(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	r.messages[message.ID] = *message
	return nil
}

// ListByUser returns the account's messages, newest first.
func (r *MockMessageRepository) ListByUser(userID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.UserID == userID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Delete removes one message scoped to its owner.
func (r *MockMessageRepository) Delete(userID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok || m.UserID != userID {
		return apperror.NotFound("message")
	}
	delete(r.messages, messageID)
	return nil
}
