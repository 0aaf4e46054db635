package repository

import (
	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *model.ContactMessage) error
	FindAll(status *model.MessageStatus) ([]model.ContactMessage, error)
	FindByID(id uint) (*model.ContactMessage, error)
	UpdateStatus(id uint, status model.MessageStatus) error
	Delete(id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *model.ContactMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		logger.Error("Failed to create contact message", err, map[string]interface{}{
			"email": message.Email,
		})
		return err
	}
	return nil
}

func (r *messageRepository) FindAll(status *model.MessageStatus) ([]model.ContactMessage, error) {
	query := r.db.Model(&model.ContactMessage{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var messages []model.ContactMessage
	if err := query.Order("created_at DESC").Order("id DESC").Find(&messages).Error; err != nil {
		logger.Error("Failed to find contact messages", err)
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) FindByID(id uint) (*model.ContactMessage, error) {
	var message model.ContactMessage
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) UpdateStatus(id uint, status model.MessageStatus) error {
	result := r.db.Model(&model.ContactMessage{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update contact message status", result.Error, map[string]interface{}{
			"message_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepository) Delete(id uint) error {
	result := r.db.Delete(&model.ContactMessage{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete contact message", result.Error, map[string]interface{}{
			"message_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
