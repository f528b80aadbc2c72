package handlers

import (
	"context"

	"scribbles/internal/services"
	"scribbles/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PromptSuggester produces suggested conversation-starter prompts.
// Satisfied by promptgen.Client.
type PromptSuggester interface {
	SuggestMessages(ctx context.Context) (string, error)
}

// MessageHandler handles HTTP requests for the anonymous inbox.
type MessageHandler struct {
	messageService *services.MessageService
	suggester      PromptSuggester
	validate       *validator.Validate
}

// NewMessageHandler creates a new MessageHandler. The suggester may be nil
// when no text-generation API is configured.
func NewMessageHandler(messageService *services.MessageService, suggester PromptSuggester) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		suggester:      suggester,
		validate:       validation.New(),
	}
}

// RegisterPublicRoutes registers the routes anonymous senders use.
func (h *MessageHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/send-message", h.HandleSendMessage)
	router.Post("/suggest-messages", h.HandleSuggestMessages)
}

// RegisterProtectedRoutes registers the owner-facing inbox routes. The
// router must already carry the auth middleware.
func (h *MessageHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/messages", h.HandleGetMessages)
	router.Delete("/messages/:id", h.HandleDeleteMessage)
	router.Get("/accept-messages", h.HandleGetAcceptMessages)
	router.Post("/accept-messages", h.HandleSetAcceptMessages)
}

// SendMessageRequest represents the request body for anonymous delivery.
type SendMessageRequest struct {
	Username string `json:"username" validate:"required,username"`
	Content  string `json:"content" validate:"required,max=1000"`
}

// HandleSendMessage delivers an anonymous message to the named user.
func (h *MessageHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if _, err := h.messageService.Send(req.Username, req.Content); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Message has been sent to the user successfully",
	})
}

// HandleGetMessages lists the authenticated owner's messages, newest first.
func (h *MessageHandler) HandleGetMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	messages, err := h.messageService.List(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"messages": messages,
	})
}

// HandleDeleteMessage removes one message from the owner's inbox.
func (h *MessageHandler) HandleDeleteMessage(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	if err := h.messageService.Delete(userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Message deleted successfully",
	})
}

// HandleGetAcceptMessages reads the current accept-messages flag from the
// store, never from the session token.
func (h *MessageHandler) HandleGetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	accepting, err := h.messageService.GetAccepting(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"is_accepting_messages": accepting,
	})
}

// AcceptMessagesRequest represents the request body for toggling the flag.
// A pointer distinguishes an absent field from an explicit false.
type AcceptMessagesRequest struct {
	AcceptMessages *bool `json:"accept_messages" validate:"required"`
}

// HandleSetAcceptMessages updates the accept-messages flag.
func (h *MessageHandler) HandleSetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var req AcceptMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.messageService.SetAccepting(userID, *req.AcceptMessages); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Message acceptance status updated successfully",
	})
}

// HandleSuggestMessages is a passthrough to the text-generation API.
func (h *MessageHandler) HandleSuggestMessages(c *fiber.Ctx) error {
	if h.suggester == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Message suggestions are not configured",
		})
	}

	text, err := h.suggester.SuggestMessages(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate message suggestions",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": text,
	})
}
