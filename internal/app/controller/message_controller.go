package controller

import (
	"fmt"
	"net/http"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/gin-gonic/gin"
)

const (
	contactSectionPath = "/#contact-section"
	adminMessagesPath  = "/admin/messages"
)

type MessageController struct {
	messageService service.MessageService
}

func NewMessageController(messageService service.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

type ContactRequest struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message"`
}

// SubmitMessage stores a contact form submission
// POST /submit-message
func (ctrl *MessageController) SubmitMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "submit message", contactSectionPath)
		return
	}

	message, err := ctrl.messageService.Submit(service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, err, "submit message", contactSectionPath)
		return
	}

	respondOK(c, "Thank you for your message! We will get back to you soon.", contactSectionPath,
		gin.H{"id": message.ID})
}

// ListMessages returns the inbox, newest first
// GET /admin/messages
func (ctrl *MessageController) ListMessages(c *gin.Context) {
	messages, err := ctrl.messageService.List(c.Query("status"))
	if err != nil {
		respondJSONError(c, err, "list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetMessage returns one message and marks it read
// GET /admin/messages/:id
func (ctrl *MessageController) GetMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminMessagesPath)
	if !ok {
		return
	}

	message, err := ctrl.messageService.Get(id)
	if err != nil {
		respondJSONError(c, err, "get message")
		return
	}

	if message.Status == model.MessageUnread {
		if err := ctrl.messageService.MarkRead(id); err != nil {
			respondJSONError(c, err, "update message")
			return
		}
		message.Status = model.MessageRead
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// MarkRead
// POST /admin/messages/:id/read
func (ctrl *MessageController) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminMessagesPath)
	if !ok {
		return
	}

	if err := ctrl.messageService.MarkRead(id); err != nil {
		respondError(c, err, "update message", adminMessagesPath)
		return
	}
	respondOK(c, "Message marked as read.", fmt.Sprintf("%s/%d", adminMessagesPath, id), nil)
}

// DeleteMessage
// POST /admin/messages/:id/delete
func (ctrl *MessageController) DeleteMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminMessagesPath)
	if !ok {
		return
	}

	if err := ctrl.messageService.Delete(id); err != nil {
		respondError(c, err, "delete message", adminMessagesPath)
		return
	}
	respondOK(c, "Message deleted.", adminMessagesPath, nil)
}
