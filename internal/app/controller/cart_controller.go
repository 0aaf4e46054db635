package controller

import (
	"net/http"

	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const cartPath = "/shop/cart"

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// QuantityRequest is the body of the cart mutations, sent as a form or JSON.
type QuantityRequest struct {
	Quantity *int `form:"quantity" json:"quantity"`
}

// bindQuantity reads the quantity from a form or JSON body, defaulting to
// fallback when it is missing or the body is empty. ok is false for a
// malformed value.
func bindQuantity(c *gin.Context, fallback int) (int, bool) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return fallback, true
	}
	var req QuantityRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid cart quantity", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, false
	}
	if req.Quantity == nil {
		return fallback, true
	}
	return *req.Quantity, true
}

// GetCart returns the caller's cart lines and totals
// GET /shop/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	auth := middleware.GetAuth(c)

	cart, err := ctrl.cartService.GetCart(auth.UserID)
	if err != nil {
		respondJSONError(c, err, "get cart")
		return
	}

	middleware.GetLoggerFromContext(c).Debug("Cart fetched", map[string]interface{}{
		"user_id": auth.UserID,
		"lines":   len(cart.Lines),
	})
	c.JSON(http.StatusOK, cart)
}

// AddToCart adds a product and redirects back to it
// POST /shop/add-to-cart/:id
func (ctrl *CartController) AddToCart(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", shopPath)
	if !ok {
		return
	}
	location := productPath(productID)

	quantity, ok := bindQuantity(c, 1)
	if !ok {
		respondError(c, service.ErrInvalidQuantity, "add to cart", location)
		return
	}

	auth := middleware.GetAuth(c)
	if err := ctrl.cartService.Add(auth.UserID, productID, quantity); err != nil {
		respondError(c, err, "add to cart", location)
		return
	}

	respondOK(c, "Product added to cart.", location, nil)
}

// AddToCartAjax adds a product and reports the new cart size
// POST /shop/add-to-cart/:id/ajax
func (ctrl *CartController) AddToCartAjax(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID."})
		return
	}

	quantity, ok := bindQuantity(c, 1)
	if !ok {
		quantity = 0
	}

	auth := middleware.GetAuth(c)
	if err := ctrl.cartService.Add(auth.UserID, productID, quantity); err != nil {
		spec := classify(err, "add to cart")
		logFailure(c, err, "add to cart", spec.status)
		c.JSON(spec.status, gin.H{"success": false, "message": spec.message})
		return
	}

	totals, err := ctrl.cartService.Totals(auth.UserID)
	if err != nil {
		spec := classify(err, "cart totals")
		logFailure(c, err, "cart totals", spec.status)
		c.JSON(spec.status, gin.H{"success": false, "message": spec.message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Product added to cart.",
		"cart_count": totals.ItemCount,
	})
}

// UpdateCart sets a line's quantity; zero or less removes it
// POST /shop/update-cart/:id
func (ctrl *CartController) UpdateCart(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", cartPath)
	if !ok {
		return
	}

	quantity, ok := bindQuantity(c, 0)
	if !ok {
		respondError(c, service.ErrInvalidQuantity, "update cart", cartPath)
		return
	}

	auth := middleware.GetAuth(c)
	removed, err := ctrl.cartService.SetQuantity(auth.UserID, productID, quantity)
	if err != nil {
		respondError(c, err, "update cart", cartPath)
		return
	}

	message := "Cart updated."
	if removed {
		message = "Item removed from cart."
	}
	respondOK(c, message, cartPath, gin.H{"removed": removed})
}

// RemoveFromCart deletes a line; an absent line is reported, not an error
// POST /shop/remove-from-cart/:id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", cartPath)
	if !ok {
		return
	}

	auth := middleware.GetAuth(c)
	removed, err := ctrl.cartService.Remove(auth.UserID, productID)
	if err != nil {
		respondError(c, err, "remove from cart", cartPath)
		return
	}

	if !removed {
		if middleware.WantsJSON(c) {
			c.JSON(http.StatusOK, gin.H{"message": "Item was not in your cart.", "removed": false})
			return
		}
		redirectWithFlash(c, flash.Info, "Item was not in your cart.", cartPath)
		return
	}
	respondOK(c, "Item removed from cart.", cartPath, gin.H{"removed": true})
}

// ClearCart empties the caller's cart
// POST /shop/clear-cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	auth := middleware.GetAuth(c)
	if err := ctrl.cartService.Clear(auth.UserID); err != nil {
		respondError(c, err, "clear cart", cartPath)
		return
	}
	respondOK(c, "Cart cleared.", cartPath, nil)
}

// CartCount returns the item count for the navbar badge
// GET /shop/cart-count
func (ctrl *CartController) CartCount(c *gin.Context) {
	auth := middleware.GetAuth(c)
	if !middleware.IsAuthenticated(auth) {
		c.JSON(http.StatusOK, gin.H{"count": 0})
		return
	}

	totals, err := ctrl.cartService.Totals(auth.UserID)
	if err != nil {
		respondJSONError(c, err, "cart totals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": totals.ItemCount})
}
