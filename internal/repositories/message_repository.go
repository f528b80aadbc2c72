package repositories

import "scribbles/internal/models"

// MessageRepository defines the interface for inbox data access.
type MessageRepository interface {
	Append(message *models.Message) error
	ListByUser(userID string) ([]models.Message, error)
	Delete(userID, messageID string) error
}
