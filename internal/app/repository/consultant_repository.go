package repository

import (
	"errors"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type ConsultantRepository interface {
	Create(consultant *model.Consultant) error
	FindByID(id uint) (*model.Consultant, error)
	ExistsByEmail(email string) (bool, error)
	FindByStatus(status model.ConsultantStatus, categoryID *uint) ([]model.Consultant, error)
	UpdateStatus(id uint, status model.ConsultantStatus) error
	Delete(id uint) error
}

type consultantRepository struct {
	db *gorm.DB
}

func NewConsultantRepository(db *gorm.DB) ConsultantRepository {
	return &consultantRepository{db: db}
}

func (r *consultantRepository) withCategoryName() *gorm.DB {
	return r.db.Model(&model.Consultant{}).
		Select("consultants.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = consultants.expertise_category")
}

func (r *consultantRepository) Create(consultant *model.Consultant) error {
	logger.Debug("Creating consultant in database", map[string]interface{}{
		"email": consultant.Email,
	})

	if err := r.db.Omit("ExpertiseCategory").Create(consultant).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("Failed to create consultant in database", err, map[string]interface{}{
				"email": consultant.Email,
			})
		}
		return err
	}

	logger.Debug("Consultant created in database", map[string]interface{}{
		"consultant_id": consultant.ID,
	})
	return nil
}

func (r *consultantRepository) FindByID(id uint) (*model.Consultant, error) {
	var consultant model.Consultant
	if err := r.withCategoryName().Where("consultants.id = ?", id).First(&consultant).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find consultant by ID in database", err, map[string]interface{}{
				"consultant_id": id,
			})
		}
		return nil, err
	}
	return &consultant, nil
}

// ExistsByEmail compares case-insensitively.
func (r *consultantRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Consultant{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check consultant email", err)
		return false, err
	}
	return count > 0, nil
}

func (r *consultantRepository) FindByStatus(status model.ConsultantStatus, categoryID *uint) ([]model.Consultant, error) {
	logger.Debug("Finding consultants by status in database", map[string]interface{}{
		"status":      status,
		"category_id": categoryID,
	})

	query := r.withCategoryName().Where("consultants.status = ?", status)
	if categoryID != nil {
		query = query.Where("consultants.expertise_category = ?", *categoryID)
	}

	var consultants []model.Consultant
	if err := query.Order("consultants.created_at DESC").Order("consultants.id DESC").Find(&consultants).Error; err != nil {
		logger.Error("Failed to find consultants by status in database", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return consultants, nil
}

func (r *consultantRepository) UpdateStatus(id uint, status model.ConsultantStatus) error {
	result := r.db.Model(&model.Consultant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to update consultant status", result.Error, map[string]interface{}{
			"consultant_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *consultantRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Consultant{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete consultant from database", result.Error, map[string]interface{}{
			"consultant_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
