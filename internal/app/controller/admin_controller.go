package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

const (
	adminProductsPath = "/admin/products"
	adminUsersPath    = "/admin/users"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AdminController serves the admin product and user screens.
type AdminController struct {
	productService service.ProductService
	userService    service.UserService
	productMaxDays int
}

func NewAdminController(productService service.ProductService, userService service.UserService, productMaxDays int) *AdminController {
	return &AdminController{
		productService: productService,
		userService:    userService,
		productMaxDays: productMaxDays,
	}
}

type RoleRequest struct {
	Role string `form:"role" json:"role"`
}

// ListProducts returns every product including inactive ones
// GET /admin/products
func (ctrl *AdminController) ListProducts(c *gin.Context) {
	opts := service.ProductListOptions{
		Query:   strings.TrimSpace(c.Query("q")),
		Sort:    c.Query("sort"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}

	products, pagination, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		respondJSONError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination,
		"max_days":   ctrl.productMaxDays,
	})
}

// ToggleProduct
// POST /admin/products/:id/toggle
func (ctrl *AdminController) ToggleProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminProductsPath)
	if !ok {
		return
	}

	active, err := ctrl.productService.ToggleActive(id)
	if err != nil {
		respondError(c, err, "update product", adminProductsPath)
		return
	}

	message := "Product deactivated."
	if active {
		message = "Product activated."
	}
	respondOK(c, message, adminProductsPath, gin.H{"active": active})
}

// DeleteProduct
// POST /admin/products/:id/delete
func (ctrl *AdminController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminProductsPath)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete product", adminProductsPath)
		return
	}
	respondOK(c, "Product deleted successfully.", adminProductsPath, nil)
}

// CleanupProducts purges products older than the configured maximum age
// POST /admin/products/cleanup
func (ctrl *AdminController) CleanupProducts(c *gin.Context) {
	removed, err := ctrl.productService.PurgeOlderThan(c.Request.Context(), ctrl.productMaxDays)
	if err != nil {
		respondError(c, err, "delete products", adminProductsPath)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Admin product cleanup", map[string]interface{}{
		"removed":  removed,
		"max_days": ctrl.productMaxDays,
	})
	message := fmt.Sprintf("Deleted %d products older than %d days.", removed, ctrl.productMaxDays)
	respondOK(c, message, adminProductsPath, gin.H{"removed": removed})
}

// ExportProducts streams the catalog as a workbook
// GET /admin/products/export
func (ctrl *AdminController) ExportProducts(c *gin.Context) {
	products, err := ctrl.productService.ExportProducts()
	if err != nil {
		respondJSONError(c, err, "export products")
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteProducts(&buf, products); err != nil {
		respondJSONError(c, err, "export products")
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListUsers
// GET /admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, pagination, err := ctrl.userService.ListUsers(service.UserListOptions{
		Query:   strings.TrimSpace(c.Query("q")),
		Role:    c.Query("role"),
		Sort:    c.Query("sort"),
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	})
	if err != nil {
		respondJSONError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination,
	})
}

// UpdateUserRole
// POST /admin/users/:id/role
func (ctrl *AdminController) UpdateUserRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminUsersPath)
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, bindError(err), "update user", adminUsersPath)
		return
	}

	user, err := ctrl.userService.UpdateRole(id, strings.TrimSpace(req.Role))
	if err != nil {
		respondError(c, err, "update user", adminUsersPath)
		return
	}
	respondOK(c, fmt.Sprintf("%s is now %s.", user.Name, user.Role), adminUsersPath, gin.H{"user": user})
}

// DeleteUser removes an account and its cart. Admins cannot delete
// themselves.
// POST /admin/users/:id/delete
func (ctrl *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", adminUsersPath)
	if !ok {
		return
	}

	if id == middleware.GetAuth(c).UserID {
		respondError(c, fmt.Errorf("%w: you cannot delete your own account", service.ErrValidation), "delete user", adminUsersPath)
		return
	}

	if err := ctrl.userService.DeleteUser(id); err != nil {
		respondError(c, err, "delete user", adminUsersPath)
		return
	}
	respondOK(c, "User deleted.", adminUsersPath, nil)
}
