package service

import (
	"errors"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartLine struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
	Subtotal float64       `json:"subtotal"`
}

type Cart struct {
	Lines  []CartLine            `json:"items"`
	Totals repository.CartTotals `json:"totals"`
}

type CartService interface {
	Add(userID, productID uint, quantity int) error
	SetQuantity(userID, productID uint, quantity int) (removed bool, err error)
	Remove(userID, productID uint) (removed bool, err error)
	Clear(userID uint) error
	Totals(userID uint) (repository.CartTotals, error)
	GetCart(userID uint) (*Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Add merges quantity into the user's row for the product, creating it when
// absent. Only active products can be added.
func (s *cartService) Add(userID, productID uint, quantity int) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Add to cart failed: product not found", map[string]interface{}{
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		return err
	}
	if !product.Active {
		logger.Warn("Add to cart failed: product inactive", map[string]interface{}{
			"product_id": productID,
		})
		return ErrProductUnavailable
	}

	if err := s.cartRepo.Increment(userID, productID, quantity); err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

// SetQuantity replaces the row's quantity; quantity ≤ 0 removes the row.
func (s *cartService) SetQuantity(userID, productID uint, quantity int) (bool, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if _, err := s.cartRepo.FindByUserAndProduct(userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCartItemNotFound
		}
		return false, err
	}

	if quantity <= 0 {
		removed, err := s.cartRepo.DeleteByUserAndProduct(userID, productID)
		if err != nil {
			return false, err
		}
		if !removed {
			// Removed concurrently between the lookup and the delete.
			return false, ErrCartItemNotFound
		}
		return true, nil
	}

	if err := s.cartRepo.UpdateQuantity(userID, productID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCartItemNotFound
		}
		return false, err
	}
	return false, nil
}

// Remove reports false when there was nothing to remove.
func (s *cartService) Remove(userID, productID uint) (bool, error) {
	removed, err := s.cartRepo.DeleteByUserAndProduct(userID, productID)
	if err != nil {
		return false, err
	}
	if !removed {
		logger.Warn("Remove from cart: item not in cart", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
	}
	return removed, nil
}

func (s *cartService) Clear(userID uint) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})
	return s.cartRepo.DeleteByUserID(userID)
}

func (s *cartService) Totals(userID uint) (repository.CartTotals, error) {
	return s.cartRepo.Totals(userID)
}

func (s *cartService) GetCart(userID uint) (*Cart, error) {
	items, err := s.cartRepo.FindActiveByUserID(userID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		subtotal := item.Product.Price * float64(item.Quantity)
		cart.Lines = append(cart.Lines, CartLine{
			Product:  item.Product,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		cart.Totals.ItemCount += int64(item.Quantity)
		cart.Totals.TotalPrice += subtotal
	}
	return cart, nil
}
