package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/models"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/state"
)

// MessageController exposes the per-contact chat history kept by the
// local message store.
type MessageController struct {
	State    *state.Manager
	Messages services.MessageStore
}

// NewMessageController creates a message controller bound to the manager
// and the message store.
func NewMessageController(m *state.Manager, store services.MessageStore) *MessageController {
	return &MessageController{State: m, Messages: store}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// List handles GET /api/v1/messages/:contact - the conversation with one
// community member, oldest first.
func (mc *MessageController) List(c *gin.Context) {
	contactID, ok := parseID(c, "contact")
	if !ok {
		return
	}

	messages, err := mc.Messages.ListByContact(contactID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// Send handles POST /api/v1/messages/:contact
func (mc *MessageController) Send(c *gin.Context) {
	contactID, ok := parseID(c, "contact")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Message text is required",
				"details": err.Error(),
			},
		})
		return
	}

	message := models.Message{
		ContactID: contactID,
		Direction: models.MessageSent,
		Text:      req.Text,
	}
	if err := mc.Messages.Append(&message); err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"message": message})
}
