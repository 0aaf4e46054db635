package repository

import (
	"errors"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartTotals is the aggregate over a user's cart rows for active products.
type CartTotals struct {
	ItemCount  int64   `json:"item_count"`
	TotalPrice float64 `json:"total_price"`
}

type CartRepository interface {
	Increment(userID, productID uint, quantity int) error
	FindByUserAndProduct(userID, productID uint) (*model.CartItem, error)
	FindActiveByUserID(userID uint) ([]model.CartItem, error)
	UpdateQuantity(userID, productID uint, quantity int) error
	DeleteByUserAndProduct(userID, productID uint) (bool, error)
	DeleteByUserID(userID uint) error
	Totals(userID uint) (CartTotals, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// Increment inserts the (user, product) row or adds quantity to the existing
// one in a single statement.
func (r *cartRepository) Increment(userID, productID uint, quantity int) error {
	logger.Debug("Upserting cart item in database", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	item := model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(&item).Error
	if err != nil {
		logger.Error("Failed to upsert cart item in database", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByUserAndProduct(userID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart item in database", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
		}
		return nil, err
	}
	return &item, nil
}

// FindActiveByUserID returns the user's rows whose product is active, with
// the product loaded.
func (r *cartRepository) FindActiveByUserID(userID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var items []model.CartItem
	err := r.db.
		Joins("JOIN products ON products.id = cart_items.product_id AND products.active = ?", true).
		Where("cart_items.user_id = ?", userID).
		Preload("Product").
		Order("cart_items.added_at ASC").
		Order("cart_items.id ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Cart items found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
	})
	return items, nil
}

func (r *cartRepository) UpdateQuantity(userID, productID uint, quantity int) error {
	result := r.db.Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update cart item quantity", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByUserAndProduct reports whether a row was removed.
func (r *cartRepository) DeleteByUserAndProduct(userID, productID uint) (bool, error) {
	result := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	logger.Debug("Deleting cart items by user ID from database", map[string]interface{}{
		"user_id": userID,
	})

	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items by user ID from database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) Totals(userID uint) (CartTotals, error) {
	var totals CartTotals
	err := r.db.Table("cart_items").
		Select("COALESCE(SUM(cart_items.quantity), 0) AS item_count, COALESCE(SUM(cart_items.quantity * products.price), 0) AS total_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ? AND products.active = ?", userID, true).
		Scan(&totals).Error
	if err != nil {
		logger.Error("Failed to compute cart totals", err, map[string]interface{}{
			"user_id": userID,
		})
		return CartTotals{}, err
	}
	return totals, nil
}
