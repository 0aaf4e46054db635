package repository

import (
	"errors"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrCategoryReferenced is returned when a consultant still points at the
// category being deleted.
var ErrCategoryReferenced = errors.New("category is referenced by consultants")

type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindByName(name string) (*model.Category, error)
	Create(category *model.Category) error
	Update(category *model.Category) error
	Delete(id uint) error

	FindSubCategories(categoryID uint) ([]model.SubCategory, error)
	FindSubCategoryByID(id uint) (*model.SubCategory, error)
	FindSubCategoryByName(categoryID uint, name string) (*model.SubCategory, error)
	CreateSubCategory(sub *model.SubCategory) error
	UpdateSubCategory(sub *model.SubCategory) error
	DeleteSubCategory(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	logger.Debug("Finding all categories in database")

	var categories []model.Category
	err := r.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to find categories in database", err)
		return nil, err
	}

	logger.Debug("Categories found in database", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	logger.Debug("Finding category by ID in database", map[string]interface{}{
		"category_id": id,
	})

	var category model.Category
	err := r.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name": category.Name,
	})

	if err := r.db.Omit("SubCategories").Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
	})

	err := r.db.Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
		}).Error
	if err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
	}
	return err
}

// Delete removes the category and its subcategories in one transaction.
// Products keep their now-dangling references.
func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&model.Consultant{}).Where("expertise_category = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrCategoryReferenced
		}

		if err := tx.Where("category_id = ?", id).Delete(&model.SubCategory{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrCategoryReferenced) {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
	}
	return err
}

func (r *categoryRepository) FindSubCategories(categoryID uint) ([]model.SubCategory, error) {
	var subs []model.SubCategory
	if err := r.db.Where("category_id = ?", categoryID).Order("name ASC").Find(&subs).Error; err != nil {
		logger.Error("Failed to find subcategories in database", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return subs, nil
}

func (r *categoryRepository) FindSubCategoryByID(id uint) (*model.SubCategory, error) {
	var sub model.SubCategory
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *categoryRepository) FindSubCategoryByName(categoryID uint, name string) (*model.SubCategory, error) {
	var sub model.SubCategory
	err := r.db.
		Where("category_id = ? AND LOWER(name) = LOWER(?)", categoryID, name).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *categoryRepository) CreateSubCategory(sub *model.SubCategory) error {
	logger.Debug("Creating subcategory in database", map[string]interface{}{
		"name":        sub.Name,
		"category_id": sub.CategoryID,
	})

	if err := r.db.Create(sub).Error; err != nil {
		logger.Error("Failed to create subcategory in database", err, map[string]interface{}{
			"name": sub.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) UpdateSubCategory(sub *model.SubCategory) error {
	err := r.db.Model(&model.SubCategory{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"name":        sub.Name,
			"description": sub.Description,
			"category_id": sub.CategoryID,
		}).Error
	if err != nil {
		logger.Error("Failed to update subcategory in database", err, map[string]interface{}{
			"subcategory_id": sub.ID,
		})
	}
	return err
}

func (r *categoryRepository) DeleteSubCategory(id uint) error {
	result := r.db.Delete(&model.SubCategory{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete subcategory from database", result.Error, map[string]interface{}{
			"subcategory_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
