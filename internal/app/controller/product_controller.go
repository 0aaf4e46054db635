package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

const (
	shopPath       = "/shop/"
	myProductsPath = "/shop/my-products"
)

type ProductController struct {
	productService  service.ProductService
	categoryService service.CategoryService
	files           storage.FileStore
}

func NewProductController(
	productService service.ProductService,
	categoryService service.CategoryService,
	files storage.FileStore,
) *ProductController {
	return &ProductController{
		productService:  productService,
		categoryService: categoryService,
		files:           files,
	}
}

// ProductForm is the create/edit form. Pointer fields distinguish "not
// sent" from empty on edit.
type ProductForm struct {
	Title          *string  `form:"title" json:"title"`
	Description    *string  `form:"description" json:"description"`
	Specifications *string  `form:"specifications" json:"specifications"`
	Price          *float64 `form:"price" json:"price"`
	Active         *string  `form:"active" json:"active"`
	CategoryID     *uint    `form:"category_id" json:"category_id"`
	SubCategoryID  *uint    `form:"subcategory_id" json:"subcategory_id"`
}

func productPath(id uint) string {
	return fmt.Sprintf("/shop/products/%d", id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseCheckbox maps HTML checkbox and JSON style values to a bool.
func parseCheckbox(raw *string) *bool {
	if raw == nil {
		return nil
	}
	v := false
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "on", "true", "1", "yes", "active":
		v = true
	}
	return &v
}

func (ctrl *ProductController) listOptions(c *gin.Context) service.ProductListOptions {
	return service.ProductListOptions{
		Query:   strings.TrimSpace(c.Query("q")),
		Sort:    c.Query("sort"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}
}

// ListProducts returns active products
// GET /shop/
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	opts := ctrl.listOptions(c)
	opts.ActiveOnly = true

	products, pagination, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		respondJSONError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination,
		"query":      opts.Query,
		"sort":       opts.Sort,
	})
}

// MyProducts returns the caller's products including inactive ones
// GET /shop/my-products
func (ctrl *ProductController) MyProducts(c *gin.Context) {
	auth := middleware.GetAuth(c)
	opts := ctrl.listOptions(c)
	opts.SellerID = &auth.UserID

	products, pagination, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		respondJSONError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination,
	})
}

// GetProduct returns a product with related products
// GET /shop/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", shopPath)
	if !ok {
		return
	}

	detail, err := ctrl.productService.GetProductDetail(id)
	if err != nil {
		respondJSONError(c, err, "get product")
		return
	}

	auth := middleware.GetAuth(c)
	canEdit := middleware.OwnsOrAdmin(auth, detail.Product.SellerID)
	if !detail.Product.Active && !canEdit {
		respondJSONError(c, service.ErrProductNotFound, "get product")
		return
	}

	imageURL := ""
	if detail.Product.Image != "" {
		imageURL = ctrl.files.URL(detail.Product.Image)
	}

	c.JSON(http.StatusOK, gin.H{
		"product":          detail.Product,
		"image_url":        imageURL,
		"category_name":    detail.CategoryName,
		"related_products": detail.Related,
		"can_edit":         canEdit,
	})
}

// ListSubCategories feeds the dependent dropdown on the product form
// GET /shop/subcategories/:category_id
func (ctrl *ProductController) ListSubCategories(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "category_id", shopPath)
	if !ok {
		return
	}

	subs, err := ctrl.categoryService.ListSubCategories(categoryID)
	if err != nil {
		respondJSONError(c, err, "list subcategories")
		return
	}

	items := make([]gin.H, 0, len(subs))
	for _, sub := range subs {
		items = append(items, gin.H{"id": sub.ID, "name": sub.Name})
	}
	c.JSON(http.StatusOK, items)
}

// CreateProduct lists a new product for the caller
// POST /shop/create
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	auth := middleware.GetAuth(c)
	location := back(c, myProductsPath)

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, bindError(err), "create product", location)
		return
	}

	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		respondError(c, err, "create product", location)
		return
	}
	defer closeImage()

	input := service.ProductInput{
		Title:          deref(form.Title),
		Description:    deref(form.Description),
		Specifications: deref(form.Specifications),
		Active:         parseCheckbox(form.Active),
		SellerEmail:    auth.Email,
		CategoryID:     form.CategoryID,
		SubCategoryID:  form.SubCategoryID,
	}
	if form.Price != nil {
		input.Price = *form.Price
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), &auth.UserID, input, image)
	if err != nil {
		respondError(c, err, "create product", location)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Product created successfully.",
			"product": product,
		})
		return
	}
	respondOK(c, "Product created successfully.", myProductsPath, nil)
}

// EditProduct changes the fields that were sent
// POST /shop/products/:id/edit
func (ctrl *ProductController) EditProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", myProductsPath)
	if !ok {
		return
	}
	location := productPath(id)

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, bindError(err), "update product", location)
		return
	}

	image, closeImage, err := formUpload(c, "image")
	if err != nil {
		respondError(c, err, "update product", location)
		return
	}
	defer closeImage()

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, service.ProductUpdateInput{
		Title:          form.Title,
		Description:    form.Description,
		Specifications: form.Specifications,
		Price:          form.Price,
		Active:         parseCheckbox(form.Active),
		CategoryID:     form.CategoryID,
		SubCategoryID:  form.SubCategoryID,
	}, image)
	if err != nil {
		respondError(c, err, "update product", location)
		return
	}

	respondOK(c, "Product updated successfully.", location, gin.H{"product": product})
}

// DeleteProduct removes a product and its cart rows
// POST /shop/products/:id/delete
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", myProductsPath)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete product", myProductsPath)
		return
	}
	respondOK(c, "Product deleted successfully.", myProductsPath, nil)
}

// ToggleProduct flips the active flag
// POST /shop/products/:id/toggle
func (ctrl *ProductController) ToggleProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", myProductsPath)
	if !ok {
		return
	}
	location := back(c, myProductsPath)

	active, err := ctrl.productService.ToggleActive(id)
	if err != nil {
		respondError(c, err, "update product", location)
		return
	}

	message := "Product deactivated."
	if active {
		message = "Product activated."
	}
	respondOK(c, message, location, gin.H{"active": active})
}

// ResolveSeller finds the seller of the product in the :id path parameter.
func (ctrl *ProductController) ResolveSeller(c *gin.Context) (*uint, error) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return nil, middleware.ErrOwnerNotFound
	}
	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return nil, middleware.ErrOwnerNotFound
		}
		return nil, err
	}
	return product.SellerID, nil
}
