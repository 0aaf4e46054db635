package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortTitleAsc  ProductSort = "title_asc"
	ProductSortTitleDesc ProductSort = "title_desc"
)

// ParseProductSort maps a query value to a sort key, falling back to newest.
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case ProductSortPriceAsc, ProductSortPriceDesc, ProductSortTitleAsc, ProductSortTitleDesc:
		return ProductSort(s)
	}
	return ProductSortNewest
}

type ProductFilter struct {
	Search     string
	SortBy     ProductSort
	ActiveOnly bool
	SellerID   *uint
	Limit      int
	Offset     int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindRelated(product *model.Product, limit int) ([]model.Product, error)
	FindAll() ([]model.Product, error)
	Update(product *model.Product) error
	SetActive(id uint, active bool) error
	Delete(id uint) error
	DeleteCreatedBefore(cutoff time.Time) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title":     product.Title,
		"seller_id": product.SellerID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
	})
	return nil
}

// escapeLike neutralises LIKE wildcards in user input. Queries pair it with
// ESCAPE '\'.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":      filter.Search,
		"sort_by":     filter.SortBy,
		"active_only": filter.ActiveOnly,
		"seller_id":   filter.SellerID,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.db.Model(&model.Product{})

	if filter.ActiveOnly {
		query = query.Where("products.active = ?", true)
	}
	if filter.SellerID != nil {
		query = query.Where("products.seller_id = ?", *filter.SellerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			`LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\'`,
			like, like,
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	switch filter.SortBy {
	case ProductSortPriceAsc:
		query = query.Order("products.price ASC").Order("products.id ASC")
	case ProductSortPriceDesc:
		query = query.Order("products.price DESC").Order("products.id DESC")
	case ProductSortTitleAsc:
		query = query.Order("products.title ASC").Order("products.id ASC")
	case ProductSortTitleDesc:
		query = query.Order("products.title DESC").Order("products.id DESC")
	default:
		query = query.Order("products.created_at DESC").Order("products.id DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// FindRelated returns other active products, same category first.
func (r *productRepository) FindRelated(product *model.Product, limit int) ([]model.Product, error) {
	query := r.db.Model(&model.Product{}).
		Where("id <> ? AND active = ?", product.ID, true)

	// Same category first. The whole ordering lives in one expression since
	// gorm drops an OrderBy expression once plain columns are merged in.
	if product.CategoryID != nil {
		query = query.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN category_id = ? THEN 0 ELSE 1 END, created_at DESC, id DESC",
			Vars: []interface{}{*product.CategoryID},
		}})
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var products []model.Product
	err := query.Limit(limit).Find(&products).Error
	if err != nil {
		logger.Error("Failed to find related products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	var products []model.Product
	if err := r.db.Order("id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find all products", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) SetActive(id uint, active bool) error {
	result := r.db.Model(&model.Product{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		logger.Error("Failed to update product active flag", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the product and every cart row referencing it.
func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
	}
	return err
}

// DeleteCreatedBefore removes every product created before cutoff together
// with its cart rows, returning the removed products.
func (r *productRepository) DeleteCreatedBefore(cutoff time.Time) ([]model.Product, error) {
	logger.Debug("Deleting products created before cutoff", map[string]interface{}{
		"cutoff": cutoff,
	})

	var removed []model.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_at < ?", cutoff).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}

		ids := make([]uint, len(removed))
		for i, p := range removed {
			ids[i] = p.ID
		}
		if err := tx.Where("product_id IN ?", ids).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.Product{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete old products", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return nil, err
	}

	logger.Debug("Old products deleted", map[string]interface{}{
		"count": len(removed),
	})
	return removed, nil
}
