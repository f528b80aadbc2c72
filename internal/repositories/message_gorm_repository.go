package repositories

import (
	"fmt"

	"scribbles/internal/apperror"
	"scribbles/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
// Append and Delete are single-row statements, so concurrent senders and the
// owner deleting messages never clobber each other.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Append inserts a delivered message.
func (r *GORMMessageRepository) Append(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to append message for user %s: %w", message.UserID, err)
	}
	return nil
}

// ListByUser returns all messages for the account, newest first.
func (r *GORMMessageRepository) ListByUser(userID string) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for user %s: %w", userID, err)
	}
	return messages, nil
}

// Delete removes one message. The owner id is always part of the predicate,
// so a message belonging to another account is simply not found.
func (r *GORMMessageRepository) Delete(userID, messageID string) error {
	res := r.db.Where("id = ? AND user_id = ?", messageID, userID).Delete(&models.Message{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("message")
	}
	return nil
}
