package services_test

import (
	"errors"
	"testing"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"
	"scribbles/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a testify mock of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIdentifier(identifier string) (*models.User, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePending(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkVerified(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) SetVerifyCode(id, code string, expiry time.Time) error {
	args := m.Called(id, code, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) SetPassword(id, passwordHash string, codeExpiry time.Time) error {
	args := m.Called(id, passwordHash, codeExpiry)
	return args.Error(0)
}

func (m *MockUserRepository) SetAcceptingMessages(id string, accepting bool) error {
	args := m.Called(id, accepting)
	return args.Error(0)
}

// MockMailPublisher is a testify mock of services.MailPublisher.
type MockMailPublisher struct {
	mock.Mock
}

func (m *MockMailPublisher) PublishEmailJob(job models.EmailJob) error {
	args := m.Called(job)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository, mail *MockMailPublisher) *services.AuthService {
	verification := services.NewVerificationService(repo)
	return services.NewAuthService(repo, verification, mail, testJWTSecret)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	mockRepo.On("GetByEmail", "alice@x.com").Return(nil, apperror.NotFound("user")).Once()

	var created *models.User
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.User)
	}).Return(nil).Once()

	var job models.EmailJob
	mockMail.On("PublishEmailJob", mock.AnythingOfType("models.EmailJob")).Run(func(args mock.Arguments) {
		job = args.Get(0).(models.EmailJob)
	}).Return(nil).Once()

	user := &models.User{Username: "alice", Email: "alice@x.com", Password: "secret1"}
	err := authService.Register(user)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)

	// The stored password is a hash of the submitted one.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")))
	assert.False(t, created.IsVerified)
	assert.True(t, created.IsAcceptingMessages)
	assert.Len(t, created.VerifyCode, 6)
	assert.WithinDuration(t, time.Now().Add(services.CodeTTL), created.VerifyCodeExpiry, 5*time.Second)

	// The queued email carries the issued code.
	assert.Equal(t, "alice@x.com", job.To)
	assert.Equal(t, models.EmailPurposeVerification, job.Purpose)
	assert.Equal(t, created.VerifyCode, job.Code)
}

func TestAuthService_RegisterEmailTaken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	verified := &models.User{ID: "u1", Username: "alice", Email: "alice@x.com", IsVerified: true}
	mockRepo.On("GetByEmail", "alice@x.com").Return(verified, nil).Once()

	err := authService.Register(&models.User{Username: "other", Email: "alice@x.com", Password: "secret1"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	mockRepo.AssertExpectations(t)
	mockMail.AssertNotCalled(t, "PublishEmailJob", mock.Anything)
}

func TestAuthService_RegisterOverwritesPending(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	pending := &models.User{ID: "u1", Username: "alice", Email: "alice@x.com", IsVerified: false}
	mockRepo.On("GetByEmail", "alice@x.com").Return(pending, nil).Once()

	var updated *models.User
	mockRepo.On("UpdatePending", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		updated = args.Get(0).(*models.User)
	}).Return(nil).Once()
	mockMail.On("PublishEmailJob", mock.AnythingOfType("models.EmailJob")).Return(nil).Once()

	err := authService.Register(&models.User{Username: "alice2", Email: "alice@x.com", Password: "fresh12"})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// The pending record was reclaimed with the new username and a new code.
	assert.Equal(t, "u1", updated.ID)
	assert.Equal(t, "alice2", updated.Username)
	assert.Len(t, updated.VerifyCode, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("fresh12")))
}

func TestAuthService_RegisterEmailDispatchFails(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	mockRepo.On("GetByEmail", "bob@x.com").Return(nil, apperror.NotFound("user")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()
	mockMail.On("PublishEmailJob", mock.AnythingOfType("models.EmailJob")).Return(errors.New("broker down")).Once()

	err := authService.Register(&models.User{Username: "bob", Email: "bob@x.com", Password: "secret1"})
	assert.True(t, errors.Is(err, apperror.ErrDependency))
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	account := &models.User{
		ID:                  "u1",
		Username:            "alice",
		Email:               "alice@x.com",
		Password:            string(hashed),
		IsVerified:          true,
		IsAcceptingMessages: true,
	}

	// Missing credentials are rejected before any lookup.
	_, _, err := authService.Authenticate("", "secret1")
	assert.True(t, errors.Is(err, apperror.ErrMissingCredentials))
	_, _, err = authService.Authenticate("alice", "")
	assert.True(t, errors.Is(err, apperror.ErrMissingCredentials))
	mockRepo.AssertNotCalled(t, "GetByIdentifier", mock.Anything)

	// Unknown identifier.
	mockRepo.On("GetByIdentifier", "nobody").Return(nil, apperror.NotFound("user")).Once()
	_, _, err = authService.Authenticate("nobody", "secret1")
	assert.True(t, errors.Is(err, apperror.ErrNoSuchUser))

	// Wrong password.
	mockRepo.On("GetByIdentifier", "alice").Return(account, nil).Once()
	_, _, err = authService.Authenticate("alice", "wrongpass")
	assert.True(t, errors.Is(err, apperror.ErrIncorrectPassword))

	// Success, by username or by email.
	mockRepo.On("GetByIdentifier", "alice@x.com").Return(account, nil).Once()
	token, user, err := authService.Authenticate("alice@x.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, true, claims["is_verified"])
	assert.Equal(t, true, claims["is_accepting_messages"])
}

func TestAuthService_AuthenticateNotVerified(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	account := &models.User{ID: "u1", Username: "alice", Password: string(hashed), IsVerified: false}

	// Correct credentials still fail while the account is unverified.
	mockRepo.On("GetByIdentifier", "alice").Return(account, nil).Once()
	_, _, err := authService.Authenticate("alice", "secret1")
	assert.True(t, errors.Is(err, apperror.ErrNotVerified))
}

func TestAuthService_ForgotPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	mockRepo.On("GetByIdentifier", "nobody").Return(nil, apperror.NotFound("user")).Once()
	err := authService.ForgotPassword("nobody")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	account := &models.User{ID: "u1", Username: "alice", Email: "alice@x.com", IsVerified: true}
	mockRepo.On("GetByIdentifier", "alice").Return(account, nil).Once()
	mockRepo.On("SetVerifyCode", "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	var job models.EmailJob
	mockMail.On("PublishEmailJob", mock.AnythingOfType("models.EmailJob")).Run(func(args mock.Arguments) {
		job = args.Get(0).(models.EmailJob)
	}).Return(nil).Once()

	err = authService.ForgotPassword("alice")
	assert.NoError(t, err)
	assert.Equal(t, models.EmailPurposePasswordReset, job.Purpose)
	assert.Len(t, job.Code, 6)
	mockRepo.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestAuthService_IsUsernameAvailable(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	mockRepo.On("GetByUsername", "free").Return(nil, apperror.NotFound("user")).Once()
	available, err := authService.IsUsernameAvailable("free")
	assert.NoError(t, err)
	assert.True(t, available)

	mockRepo.On("GetByUsername", "taken").Return(&models.User{ID: "u1"}, nil).Once()
	available, err = authService.IsUsernameAvailable("taken")
	assert.NoError(t, err)
	assert.False(t, available)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockMail := new(MockMailPublisher)
	authService := newAuthService(mockRepo, mockMail)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	account := &models.User{ID: "u1", Username: "alice", Password: string(hashed), IsVerified: true}
	mockRepo.On("GetByIdentifier", "alice").Return(account, nil).Once()

	token, _, err := authService.Authenticate("alice", "secret1")
	assert.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])

	_, err = authService.ValidateToken("not-a-token")
	assert.Error(t, err)
}
