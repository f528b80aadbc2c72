package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"
	"scribbles/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// MailPublisher enqueues outbound email jobs. Satisfied by mailqueue.Client.
type MailPublisher interface {
	PublishEmailJob(job models.EmailJob) error
}

// AuthService handles business logic for registration, verification, and
// session tokens.
type AuthService struct {
	userRepo     repositories.UserRepository
	verification *VerificationService
	mail         MailPublisher
	jwtSecret    []byte
	tokenDurat   time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, verification *VerificationService, mail MailPublisher, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		verification: verification,
		mail:         mail,
		jwtSecret:    []byte(jwtSecret),
		tokenDurat:   24 * time.Hour, // Token valid for 24 hours
	}
}

// Register creates an unverified account with a fresh verification code and
// queues the verification email. An unverified account already holding the
// email is overwritten in place, so at most one pending identity exists per
// email. Username/email uniqueness is enforced by the store's unique
// indexes, not by a pre-check.
func (s *AuthService) Register(user *models.User) error {
	code, err := s.verification.NewCode()
	if err != nil {
		return apperror.Dependency("generate verification code", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(user.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return apperror.Dependency("look up email", err)
	}

	if existing != nil {
		if existing.IsVerified {
			return apperror.Conflict(fmt.Sprintf("email '%s' is already registered", user.Email))
		}
		// Pending signup reclaimed: new username, password, and code.
		existing.Username = user.Username
		existing.Password = string(hashedPassword)
		existing.VerifyCode = code
		existing.VerifyCodeExpiry = time.Now().Add(CodeTTL)
		if err := s.userRepo.UpdatePending(existing); err != nil {
			return err
		}
		*user = *existing
	} else {
		user.Password = string(hashedPassword)
		user.VerifyCode = code
		user.VerifyCodeExpiry = time.Now().Add(CodeTTL)
		user.IsVerified = false
		user.IsAcceptingMessages = true
		if err := s.userRepo.Create(user); err != nil {
			return err
		}
	}

	job := models.EmailJob{
		To:       user.Email,
		Username: user.Username,
		Code:     code,
		Purpose:  models.EmailPurposeVerification,
		QueuedAt: time.Now(),
	}
	if err := s.mail.PublishEmailJob(job); err != nil {
		// The account stays pending; a retried signup reissues the code.
		return apperror.Dependency("queue verification email", err)
	}
	return nil
}

// VerifyAccount checks a submitted code for the named user and marks the
// account verified on success.
func (s *AuthService) VerifyAccount(username, code string) error {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	return s.verification.Verify(user, code)
}

// Authenticate validates an identifier (username or email) and password and
// returns a signed session token plus the account. Failure modes are
// checked in order: missing credentials, unknown user, unverified account,
// wrong password.
func (s *AuthService) Authenticate(identifier, password string) (string, *models.User, error) {
	if identifier == "" || password == "" {
		return "", nil, apperror.MissingCredentials()
	}

	user, err := s.userRepo.GetByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil, apperror.NoSuchUser()
		}
		return "", nil, apperror.Dependency("look up user", err)
	}

	if !user.IsVerified {
		return "", nil, apperror.NotVerified()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.IncorrectPassword()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":               user.ID,
		"username":              user.Username,
		"is_verified":           user.IsVerified,
		"is_accepting_messages": user.IsAcceptingMessages,
		"exp":                   time.Now().Add(s.tokenDurat).Unix(),
		"iat":                   time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, user, nil
}

// ForgotPassword issues a fresh code to the matching account and queues the
// password-reset email.
func (s *AuthService) ForgotPassword(identifier string) error {
	user, err := s.userRepo.GetByIdentifier(identifier)
	if err != nil {
		return err
	}

	code, _, err := s.verification.IssueCode(user)
	if err != nil {
		return apperror.Dependency("issue reset code", err)
	}

	job := models.EmailJob{
		To:       user.Email,
		Username: user.Username,
		Code:     code,
		Purpose:  models.EmailPurposePasswordReset,
		QueuedAt: time.Now(),
	}
	if err := s.mail.PublishEmailJob(job); err != nil {
		return apperror.Dependency("queue password reset email", err)
	}
	return nil
}

// ResetPassword replaces the password of the matching account if the
// submitted code is valid and unexpired.
func (s *AuthService) ResetPassword(identifier, code, newPassword string) error {
	user, err := s.userRepo.GetByIdentifier(identifier)
	if err != nil {
		return err
	}
	return s.verification.ResetPassword(user, code, newPassword)
}

// IsUsernameAvailable reports whether no account holds the username.
func (s *AuthService) IsUsernameAvailable(username string) (bool, error) {
	_, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return true, nil
		}
		return false, apperror.Dependency("look up username", err)
	}
	return false, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
