package repositories

import (
	"time"

	"scribbles/internal/models"
)

// UserRepository defines the interface for account data access.
// Write operations that touch individual fields are expressed as targeted
// updates so implementations can keep them atomic per row.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByIdentifier(identifier string) (*models.User, error)
	UpdatePending(user *models.User) error
	MarkVerified(id string) error
	SetVerifyCode(id, code string, expiry time.Time) error
	SetPassword(id, passwordHash string, codeExpiry time.Time) error
	SetAcceptingMessages(id string, accepting bool) error
}
