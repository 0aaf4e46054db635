package service

import (
	"errors"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type ContactInput struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email,max=120"`
	Message string `validate:"required,max=5000"`
}

type MessageService interface {
	Submit(input ContactInput) (*model.ContactMessage, error)
	List(status string) ([]model.ContactMessage, error)
	Get(id uint) (*model.ContactMessage, error)
	MarkRead(id uint) error
	Delete(id uint) error
}

type messageService struct {
	messageRepo repository.MessageRepository
}

func NewMessageService(messageRepo repository.MessageRepository) MessageService {
	return &messageService{messageRepo: messageRepo}
}

func (s *messageService) Submit(input ContactInput) (*model.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Message = strings.TrimSpace(input.Message)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	message := &model.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Message: input.Message,
		Status:  model.MessageUnread,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	logger.Info("Contact message received", map[string]interface{}{
		"message_id": message.ID,
	})
	return message, nil
}

// List returns messages newest first; an empty status returns all.
func (s *messageService) List(status string) ([]model.ContactMessage, error) {
	if status == "" {
		return s.messageRepo.FindAll(nil)
	}

	st := model.MessageStatus(status)
	switch st {
	case model.MessageUnread, model.MessageRead, model.MessageReplied:
	default:
		return nil, validationError("unknown message status %q", status)
	}
	return s.messageRepo.FindAll(&st)
}

func (s *messageService) Get(id uint) (*model.ContactMessage, error) {
	message, err := s.messageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return message, nil
}

func (s *messageService) MarkRead(id uint) error {
	if err := s.messageRepo.UpdateStatus(id, model.MessageRead); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

func (s *messageService) Delete(id uint) error {
	if err := s.messageRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	logger.Info("Contact message deleted", map[string]interface{}{
		"message_id": id,
	})
	return nil
}
