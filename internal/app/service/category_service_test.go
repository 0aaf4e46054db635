package service

import (
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T) (CategoryService, *gorm.DB) {
	testDB := setupTestDB(t)
	return NewCategoryService(repository.NewCategoryRepository(testDB)), testDB
}

func TestCategoryService_CreateRejectsDuplicateName(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	_, err := svc.CreateCategory(CategoryInput{Name: "Fertilizers"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(CategoryInput{Name: " fertilizers "})
	assert.ErrorIs(t, err, ErrCategoryNameTaken)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateCategory(CategoryInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategoryService_Update(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	a, err := svc.CreateCategory(CategoryInput{Name: "Seeds"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(CategoryInput{Name: "Tools"})
	require.NoError(t, err)

	// Keeping its own name is fine
	updated, err := svc.UpdateCategory(a.ID, CategoryInput{Name: "Seeds", Description: "All seeds"})
	require.NoError(t, err)
	assert.Equal(t, "All seeds", updated.Description)

	_, err = svc.UpdateCategory(a.ID, CategoryInput{Name: "Tools"})
	assert.ErrorIs(t, err, ErrCategoryNameTaken)

	_, err = svc.UpdateCategory(999, CategoryInput{Name: "X"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_DeleteInUseRollsBack(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	category, err := svc.CreateCategory(CategoryInput{Name: "Poultry"})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(SubCategoryInput{Name: "Broilers", CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, testDB.Create(&model.Consultant{
		Name: "Vet", Email: "vet@example.com", Phone: "03001234567",
		ExpertiseCategoryID: category.ID, Bio: "bio", Status: model.ConsultantApproved,
	}).Error)

	err = svc.DeleteCategory(category.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.ErrorIs(t, err, ErrConflict)

	subs, err := svc.ListSubCategories(category.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestCategoryService_DeleteCascades(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	category, err := svc.CreateCategory(CategoryInput{Name: "Dairy"})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(SubCategoryInput{Name: "Milk", CategoryID: category.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(category.ID))

	var count int64
	testDB.Model(&model.SubCategory{}).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.DeleteCategory(category.ID), ErrCategoryNotFound)
	_, err = svc.ListSubCategories(category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_SubCategories(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	crops, err := svc.CreateCategory(CategoryInput{Name: "Crops"})
	require.NoError(t, err)
	fruit, err := svc.CreateCategory(CategoryInput{Name: "Fruit"})
	require.NoError(t, err)

	sub, err := svc.CreateSubCategory(SubCategoryInput{Name: "Citrus", CategoryID: crops.ID})
	require.NoError(t, err)

	_, err = svc.CreateSubCategory(SubCategoryInput{Name: "citrus", CategoryID: crops.ID})
	assert.ErrorIs(t, err, ErrSubCategoryNameTaken)

	// Same name under another parent is allowed
	_, err = svc.CreateSubCategory(SubCategoryInput{Name: "Citrus", CategoryID: fruit.ID})
	require.NoError(t, err)

	_, err = svc.CreateSubCategory(SubCategoryInput{Name: "Wheat", CategoryID: 999})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	moved, err := svc.UpdateSubCategory(sub.ID, SubCategoryInput{Name: "Oranges", CategoryID: fruit.ID})
	require.NoError(t, err)
	assert.Equal(t, fruit.ID, *moved.CategoryID)

	require.NoError(t, svc.DeleteSubCategory(sub.ID))
	assert.ErrorIs(t, svc.DeleteSubCategory(sub.ID), ErrSubCategoryNotFound)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}
