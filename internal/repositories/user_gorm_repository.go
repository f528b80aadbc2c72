package repositories

import (
	"errors"
	"fmt"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// The gorm.DB must be opened with TranslateError so unique-index violations
// surface as gorm.ErrDuplicatedKey instead of driver-specific errors.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new account. Uniqueness of username and email is enforced
// by the store's unique indexes, not by a pre-check, so two concurrent
// signups cannot both succeed.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("username or email is already taken")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne("id = ?", id)
}

// GetByUsername retrieves an account by its username.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getOne("username = ?", username)
}

// GetByEmail retrieves an account by its email.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne("email = ?", email)
}

// GetByIdentifier retrieves an account whose username or email matches.
func (r *GORMUserRepository) GetByIdentifier(identifier string) (*models.User, error) {
	return r.getOne("username = ? OR email = ?", identifier, identifier)
}

func (r *GORMUserRepository) getOne(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, append([]interface{}{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdatePending overwrites the credentials and verification code of an
// unverified account claimed again at signup. A username collision with
// another account surfaces as a conflict.
func (r *GORMUserRepository) UpdatePending(user *models.User) error {
	err := r.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":           user.Username,
		"password":           user.Password,
		"verify_code":        user.VerifyCode,
		"verify_code_expiry": user.VerifyCodeExpiry,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict(fmt.Sprintf("username '%s' is already taken", user.Username))
		}
		return fmt.Errorf("failed to update pending user %s: %w", user.ID, err)
	}
	return nil
}

// MarkVerified flips the verified flag on.
func (r *GORMUserRepository) MarkVerified(id string) error {
	return r.updateFields(id, map[string]interface{}{"is_verified": true})
}

// SetVerifyCode stores a freshly issued code and its expiry.
func (r *GORMUserRepository) SetVerifyCode(id, code string, expiry time.Time) error {
	return r.updateFields(id, map[string]interface{}{
		"verify_code":        code,
		"verify_code_expiry": expiry,
	})
}

// SetPassword replaces the stored hash and moves the code expiry, which is
// how a consumed reset code is invalidated.
func (r *GORMUserRepository) SetPassword(id, passwordHash string, codeExpiry time.Time) error {
	return r.updateFields(id, map[string]interface{}{
		"password":           passwordHash,
		"verify_code_expiry": codeExpiry,
	})
}

// SetAcceptingMessages sets the accept-messages flag. Idempotent.
func (r *GORMUserRepository) SetAcceptingMessages(id string, accepting bool) error {
	return r.updateFields(id, map[string]interface{}{"is_accepting_messages": accepting})
}

func (r *GORMUserRepository) updateFields(id string, fields map[string]interface{}) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user")
	}
	return nil
}
