package service

import (
	"errors"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string `validate:"required,max=120"`
	Description string `validate:"max=2000"`
}

type SubCategoryInput struct {
	Name        string `validate:"required,max=120"`
	Description string `validate:"max=2000"`
	CategoryID  uint   `validate:"required"`
}

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	GetCategory(id uint) (*model.Category, error)
	CreateCategory(input CategoryInput) (*model.Category, error)
	UpdateCategory(id uint, input CategoryInput) (*model.Category, error)
	DeleteCategory(id uint) error

	ListSubCategories(categoryID uint) ([]model.SubCategory, error)
	CreateSubCategory(input SubCategoryInput) (*model.SubCategory, error)
	UpdateSubCategory(id uint, input SubCategoryInput) (*model.SubCategory, error)
	DeleteSubCategory(id uint) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) GetCategory(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// nameTaken reports whether another category (not exceptID) already uses name.
func (s *categoryService) nameTaken(name string, exceptID uint) (bool, error) {
	existing, err := s.categoryRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != exceptID, nil
}

func (s *categoryService) CreateCategory(input CategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(input.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCategoryNameTaken
	}

	category := &model.Category{Name: input.Name, Description: strings.TrimSpace(input.Description)}
	if err := s.categoryRepo.Create(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *categoryService) UpdateCategory(id uint, input CategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(input.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCategoryNameTaken
	}

	category.Name = input.Name
	category.Description = strings.TrimSpace(input.Description)
	if err := s.categoryRepo.Update(category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	logger.Info("Category updated", map[string]interface{}{
		"category_id": id,
	})
	return category, nil
}

// DeleteCategory removes the category and its subcategories. Products keep
// dangling references and read as uncategorized.
func (s *categoryService) DeleteCategory(id uint) error {
	err := s.categoryRepo.Delete(id)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrCategoryReferenced), errors.Is(err, gorm.ErrForeignKeyViolated):
		logger.Warn("Category delete refused: still referenced", map[string]interface{}{
			"category_id": id,
		})
		return ErrCategoryInUse
	default:
		return err
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *categoryService) ListSubCategories(categoryID uint) ([]model.SubCategory, error) {
	if _, err := s.GetCategory(categoryID); err != nil {
		return nil, err
	}
	return s.categoryRepo.FindSubCategories(categoryID)
}

func (s *categoryService) subNameTaken(categoryID uint, name string, exceptID uint) (bool, error) {
	existing, err := s.categoryRepo.FindSubCategoryByName(categoryID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != exceptID, nil
}

func (s *categoryService) CreateSubCategory(input SubCategoryInput) (*model.SubCategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.GetCategory(input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.subNameTaken(input.CategoryID, input.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSubCategoryNameTaken
	}

	categoryID := input.CategoryID
	sub := &model.SubCategory{
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  &categoryID,
	}
	if err := s.categoryRepo.CreateSubCategory(sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubCategoryNameTaken
		}
		return nil, err
	}

	logger.Info("Subcategory created", map[string]interface{}{
		"subcategory_id": sub.ID,
		"category_id":    categoryID,
	})
	return sub, nil
}

func (s *categoryService) UpdateSubCategory(id uint, input SubCategoryInput) (*model.SubCategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	sub, err := s.categoryRepo.FindSubCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, err
	}
	if _, err := s.GetCategory(input.CategoryID); err != nil {
		return nil, err
	}

	taken, err := s.subNameTaken(input.CategoryID, input.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSubCategoryNameTaken
	}

	categoryID := input.CategoryID
	sub.Name = input.Name
	sub.Description = strings.TrimSpace(input.Description)
	sub.CategoryID = &categoryID
	if err := s.categoryRepo.UpdateSubCategory(sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubCategoryNameTaken
		}
		return nil, err
	}
	return sub, nil
}

func (s *categoryService) DeleteSubCategory(id uint) error {
	if err := s.categoryRepo.DeleteSubCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubCategoryNotFound
		}
		return err
	}

	logger.Info("Subcategory deleted", map[string]interface{}{
		"subcategory_id": id,
	})
	return nil
}
