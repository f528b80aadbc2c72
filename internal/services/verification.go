package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"scribbles/internal/apperror"
	"scribbles/internal/models"
	"scribbles/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// CodeTTL is how long an issued verification code stays valid.
const CodeTTL = time.Hour

// VerificationService issues and checks the one-time codes used for both
// email verification and password reset.
type VerificationService struct {
	userRepo repositories.UserRepository
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(userRepo repositories.UserRepository) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
	}
}

// NewCode returns a uniform random 6-digit code in [100000, 999999].
func (s *VerificationService) NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// IssueCode stores a fresh code with an expiry one hour ahead and returns
// both. The passed user is updated in place so the caller sees the new code.
func (s *VerificationService) IssueCode(user *models.User) (string, time.Time, error) {
	code, err := s.NewCode()
	if err != nil {
		return "", time.Time{}, err
	}
	expiry := time.Now().Add(CodeTTL)
	if err := s.userRepo.SetVerifyCode(user.ID, code, expiry); err != nil {
		return "", time.Time{}, err
	}
	user.VerifyCode = code
	user.VerifyCodeExpiry = expiry
	return code, expiry, nil
}

// checkCode compares the submitted code against the stored one. Mismatch is
// reported before expiry: a wrong code is wrong regardless of timing.
func (s *VerificationService) checkCode(user *models.User, submitted string) error {
	if user.VerifyCode != submitted {
		return apperror.CodeMismatch()
	}
	if !time.Now().Before(user.VerifyCodeExpiry) {
		return apperror.CodeExpired()
	}
	return nil
}

// Verify marks the account verified if the submitted code matches and has
// not expired. The account is not mutated on failure.
func (s *VerificationService) Verify(user *models.User, submitted string) error {
	if err := s.checkCode(user, submitted); err != nil {
		return err
	}
	if err := s.userRepo.MarkVerified(user.ID); err != nil {
		return apperror.Dependency("mark user verified", err)
	}
	user.IsVerified = true
	return nil
}

// ResetPassword replaces the password hash after the same code check as
// Verify. The code is consumed by zeroing its expiry, so it cannot be
// replayed. Prior verification state is not required.
func (s *VerificationService) ResetPassword(user *models.User, submitted, newPassword string) error {
	if err := s.checkCode(user, submitted); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.SetPassword(user.ID, string(hashed), time.Time{}); err != nil {
		return apperror.Dependency("reset password", err)
	}
	user.Password = string(hashed)
	user.VerifyCodeExpiry = time.Time{}
	return nil
}
