package handlers

import (
	"scribbles/internal/models"
	"scribbles/internal/services"
	"scribbles/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for the account lifecycle.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
	}
}

// RegisterRoutes registers the account lifecycle routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/sign-up", h.HandleSignUp)
	authRoutes.Post("/sign-in", h.HandleSignIn)
	authRoutes.Post("/verify-code", h.HandleVerifyCode)
	authRoutes.Post("/forgot-password", h.HandleForgotPassword)
	authRoutes.Post("/reset-password", h.HandleResetPassword)
	authRoutes.Get("/check-username", h.HandleCheckUsername)
}

// SignUpRequest represents the request body for registration.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// HandleSignUp registers a new account and queues the verification email.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.authService.Register(&user); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully, please verify your email",
	})
}

// VerifyCodeRequest represents the request body for account verification.
type VerifyCodeRequest struct {
	Username string `json:"username" validate:"required,username"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

// HandleVerifyCode checks a submitted verification code.
func (h *AuthHandler) HandleVerifyCode(c *fiber.Ctx) error {
	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.authService.VerifyAccount(req.Username, req.Code); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account verified successfully",
	})
}

// SignInRequest represents the request body for login.
type SignInRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// HandleSignIn authenticates a user and issues a session token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	token, user, err := h.authService.Authenticate(req.Identifier, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Signed in successfully",
		"token":   token,
		"user": fiber.Map{
			"id":                    user.ID,
			"username":              user.Username,
			"is_verified":           user.IsVerified,
			"is_accepting_messages": user.IsAcceptingMessages,
		},
	})
}

// ForgotPasswordRequest represents the request body for a reset-code request.
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// HandleForgotPassword issues a fresh code and queues the reset email.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.authService.ForgotPassword(req.Identifier); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Verification code sent to your email",
	})
}

// ResetPasswordRequest represents the request body for a password reset.
type ResetPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6,numeric"`
	Password   string `json:"password" validate:"required,password"`
}

// HandleResetPassword replaces the password after checking the reset code.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.authService.ResetPassword(req.Identifier, req.Code, req.Password); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successfully",
	})
}

// HandleCheckUsername reports whether a username is still available. Used by
// the signup form while the user types.
func (h *AuthHandler) HandleCheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if err := h.validate.Var(username, "required,username"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid username",
		})
	}

	available, err := h.authService.IsUsernameAvailable(username)
	if err != nil {
		return respondError(c, err)
	}
	if !available {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "Username is already taken",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Username is available",
	})
}
