package controller

import (
	"net/http"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/gin-gonic/gin"
)

const adminCategoriesPath = "/admin/categories"

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type CategoryRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
}

type SubCategoryRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	CategoryID  uint   `form:"category_id" json:"category_id"`
}

// ListCategories returns categories with their subcategories
// GET /admin/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories()
	if err != nil {
		respondJSONError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory
// POST /admin/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create category", adminCategoriesPath)
		return
	}

	category, err := ctrl.categoryService.CreateCategory(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "create category", adminCategoriesPath)
		return
	}
	respondOK(c, "Category created successfully.", adminCategoriesPath, gin.H{"category": category})
}

// UpdateCategory
// POST /admin/categories/:id/edit
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "update category", adminCategoriesPath)
		return
	}

	category, err := ctrl.categoryService.UpdateCategory(id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err, "update category", adminCategoriesPath)
		return
	}
	respondOK(c, "Category updated successfully.", adminCategoriesPath, gin.H{"category": category})
}

// DeleteCategory removes a category and its subcategories
// POST /admin/categories/:id/delete
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		respondError(c, err, "delete category", adminCategoriesPath)
		return
	}
	respondOK(c, "Category deleted successfully.", adminCategoriesPath, nil)
}

// ListSubCategories
// GET /admin/categories/:id/subcategories
func (ctrl *CategoryController) ListSubCategories(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	subs, err := ctrl.categoryService.ListSubCategories(id)
	if err != nil {
		respondJSONError(c, err, "list subcategories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": subs})
}

// CreateSubCategory adds a subcategory under the category in the path
// POST /admin/categories/:id/subcategories
func (ctrl *CategoryController) CreateSubCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "create subcategory", adminCategoriesPath)
		return
	}

	sub, err := ctrl.categoryService.CreateSubCategory(service.SubCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  id,
	})
	if err != nil {
		respondError(c, err, "create subcategory", adminCategoriesPath)
		return
	}
	respondOK(c, "Subcategory created successfully.", adminCategoriesPath, gin.H{"subcategory": sub})
}

// UpdateSubCategory may also move the subcategory to another category
// POST /admin/subcategories/:id/edit
func (ctrl *CategoryController) UpdateSubCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "update subcategory", adminCategoriesPath)
		return
	}

	sub, err := ctrl.categoryService.UpdateSubCategory(id, service.SubCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, err, "update subcategory", adminCategoriesPath)
		return
	}
	respondOK(c, "Subcategory updated successfully.", adminCategoriesPath, gin.H{"subcategory": sub})
}

// DeleteSubCategory
// POST /admin/subcategories/:id/delete
func (ctrl *CategoryController) DeleteSubCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminCategoriesPath)
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteSubCategory(id); err != nil {
		respondError(c, err, "delete subcategory", adminCategoriesPath)
		return
	}
	respondOK(c, "Subcategory deleted successfully.", adminCategoriesPath, nil)
}
