package repositories

import (
	"sync"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// It enforces the same username/email uniqueness as the GORM repository so
// service tests exercise the conflict paths.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new account, rejecting duplicate usernames or emails.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("username or email is already taken")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID returns an account by its ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return &user, nil
}

// GetByUsername returns an account by its username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Username == username })
}

// GetByEmail returns an account by its email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Email == email })
}

// GetByIdentifier returns an account whose username or email matches.
func (r *MockUserRepository) GetByIdentifier(identifier string) (*models.User, error) {
	return r.findOne(func(u models.User) bool {
		return u.Username == identifier || u.Email == identifier
	})
}

func (r *MockUserRepository) findOne(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, apperror.NotFound("user")
}

// UpdatePending overwrites the credentials and code of an unverified account.
func (r *MockUserRepository) UpdatePending(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return apperror.NotFound("user")
	}
	for id, u := range r.users {
		if id != user.ID && u.Username == user.Username {
			return apperror.Conflict("username '" + user.Username + "' is already taken")
		}
	}
	stored.Username = user.Username
	stored.Password = user.Password
	stored.VerifyCode = user.VerifyCode
	stored.VerifyCodeExpiry = user.VerifyCodeExpiry
	r.users[user.ID] = stored
	return nil
}

// MarkVerified flips the verified flag on.
func (r *MockUserRepository) MarkVerified(id string) error {
	return r.update(id, func(u *models.User) { u.IsVerified = true })
}

// SetVerifyCode stores a freshly issued code and its expiry.
func (r *MockUserRepository) SetVerifyCode(id, code string, expiry time.Time) error {
	return r.update(id, func(u *models.User) {
		u.VerifyCode = code
		u.VerifyCodeExpiry = expiry
	})
}

// SetPassword replaces the stored hash and moves the code expiry.
func (r *MockUserRepository) SetPassword(id, passwordHash string, codeExpiry time.Time) error {
	return r.update(id, func(u *models.User) {
		u.Password = passwordHash
		u.VerifyCodeExpiry = codeExpiry
	})
}

// SetAcceptingMessages sets the accept-messages flag.
func (r *MockUserRepository) SetAcceptingMessages(id string, accepting bool) error {
	return r.update(id, func(u *models.User) { u.IsAcceptingMessages = accepting })
}

func (r *MockUserRepository) update(id string, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperror.NotFound("user")
	}
	apply(&user)
	r.users[id] = user
	return nil
}
