package services

import (
	"strings"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"
	"scribbles/internal/repositories"

	"github.com/google/uuid"
)

// MessageService handles the anonymous inbox: delivery, listing, deletion,
// and the accept-messages gate.
type MessageService struct {
	userRepo    repositories.UserRepository
	messageRepo repositories.MessageRepository
}

// NewMessageService creates a new MessageService.
func NewMessageService(userRepo repositories.UserRepository, messageRepo repositories.MessageRepository) *MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// Send delivers an anonymous message to the named user. Blank content is
// rejected before any store access. Each call appends a new message; there
// is no dedup.
func (s *MessageService) Send(username, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.Validation("content", "message content must not be blank")
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	// The accepting flag is read from the store on every delivery, never
	// from a cached token: the owner may have toggled it at any point.
	if !user.IsAcceptingMessages {
		return nil, apperror.NotAccepting(user.Username)
	}

	message := &models.Message{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Append(message); err != nil {
		return nil, apperror.Dependency("append message", err)
	}
	return message, nil
}

// List returns the account's messages, newest first. An empty inbox yields
// an empty slice, not an error.
func (s *MessageService) List(userID string) ([]models.Message, error) {
	messages, err := s.messageRepo.ListByUser(userID)
	if err != nil {
		return nil, apperror.Dependency("list messages", err)
	}
	return messages, nil
}

// Delete removes one message from the authenticated owner's inbox. A repeat
// delete with the same id fails as not found.
func (s *MessageService) Delete(userID, messageID string) error {
	return s.messageRepo.Delete(userID, messageID)
}

// SetAccepting sets the accept-messages flag. Setting the current value is a
// no-op success.
func (s *MessageService) SetAccepting(userID string, accepting bool) error {
	return s.userRepo.SetAcceptingMessages(userID, accepting)
}

// GetAccepting reads the current accept-messages flag from the store.
func (s *MessageService) GetAccepting(userID string) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false, err
	}
	return user.IsAcceptingMessages, nil
}
