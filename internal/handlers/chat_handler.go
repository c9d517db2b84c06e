package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/homescout/api/internal/errors"
	"github.com/homescout/api/internal/middleware"
	"github.com/homescout/api/internal/services"
)

// ChatHandler handles free-text property search requests.
type ChatHandler struct {
	service services.ChatService
}

// NewChatHandler creates a new ChatHandler instance.
func NewChatHandler(service services.ChatService) *ChatHandler {
	return &ChatHandler{
		service: service,
	}
}

// ChatRequest represents the chat endpoint request body.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse represents the chat endpoint response.
type ChatResponse struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Properties    []PropertyData `json:"properties"`
	PropertyCount int            `json:"property_count"`
	SessionID     string         `json:"session_id,omitempty"`
	MediaURLs     []string       `json:"media_urls"`
}

// Chat handles POST /api/v1/chat. Assistant failures inside the service
// degrade to a templated reply; only a search failure reaches here as an
// error, and it must be explicit rather than an empty "no matches" reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid chat request", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing chat message", map[string]interface{}{
			"length": len(req.Message),
		})
	}

	result, err := h.service.Process(c.Request.Context(), req.Message)
	if err != nil {
		apierrors.InternalServerError(c,
			"I'm having trouble searching properties right now, please try again", err)
		return
	}

	properties := make([]PropertyData, 0, len(result.Results))
	for _, r := range result.Results {
		properties = append(properties, mapResultToDTO(r))
	}

	c.JSON(http.StatusOK, ChatResponse{
		Success:       true,
		Message:       result.Message,
		Properties:    properties,
		PropertyCount: len(properties),
		SessionID:     req.SessionID,
		MediaURLs:     result.MediaURLs,
	})
}
