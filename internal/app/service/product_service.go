package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const relatedProductsLimit = 4

type ProductListOptions struct {
	Query      string
	Sort       string
	Page       int
	PerPage    int
	ActiveOnly bool
	SellerID   *uint
}

type ProductInput struct {
	Title          string  `validate:"required,max=200"`
	Description    string  `validate:"max=10000"`
	Specifications string  `validate:"max=10000"`
	Price          float64 `validate:"finite,gte=0"`
	Active         *bool
	SellerEmail    string `validate:"omitempty,email"`
	CategoryID     *uint
	SubCategoryID  *uint
	ExpiresAt      *time.Time
}

// ProductUpdateInput changes only the non-nil fields. A zero category or
// subcategory id clears the reference.
type ProductUpdateInput struct {
	Title          *string
	Description    *string
	Specifications *string
	Price          *float64
	Active         *bool
	SellerEmail    *string
	CategoryID     *uint
	SubCategoryID  *uint
	ExpiresAt      *time.Time
}

type ProductDetail struct {
	Product      *model.Product  `json:"product"`
	CategoryName string          `json:"category_name"`
	Related      []model.Product `json:"related_products"`
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, Pagination, error)
	GetProduct(id uint) (*model.Product, error)
	GetProductDetail(id uint) (*ProductDetail, error)
	CreateProduct(ctx context.Context, sellerID *uint, input ProductInput, image *storage.Upload) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductUpdateInput, image *storage.Upload) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ToggleActive(id uint) (bool, error)
	PurgeOlderThan(ctx context.Context, days int) (int, error)
	ExportProducts() ([]model.Product, error)
}

type productService struct {
	productRepo    repository.ProductRepository
	categoryRepo   repository.CategoryRepository
	files          storage.FileStore
	defaultPerPage int
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	files storage.FileStore,
	defaultPerPage int,
) ProductService {
	return &productService{
		productRepo:    productRepo,
		categoryRepo:   categoryRepo,
		files:          files,
		defaultPerPage: defaultPerPage,
	}
}

// ParseSpecifications turns "Key: Value" lines into a map. Lines without a
// colon are collected under "notes".
func ParseSpecifications(raw string) datatypes.JSONMap {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	specs := datatypes.JSONMap{}
	var notes []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			notes = append(notes, line)
			continue
		}
		specs[key] = strings.TrimSpace(value)
	}
	if len(notes) > 0 {
		specs["notes"] = strings.Join(notes, "\n")
	}
	return specs
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, Pagination, error) {
	page, perPage := normalizePage(opts.Page, opts.PerPage, s.defaultPerPage)

	products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Search:     opts.Query,
		SortBy:     repository.ParseProductSort(opts.Sort),
		ActiveOnly: opts.ActiveOnly,
		SellerID:   opts.SellerID,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	})
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"query": opts.Query,
		})
		return nil, Pagination{}, err
	}

	return products, newPagination(page, perPage, total), nil
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductDetail(id uint) (*ProductDetail, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.FindRelated(product, relatedProductsLimit)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product:      product,
		CategoryName: s.categoryName(product.CategoryID),
		Related:      related,
	}, nil
}

// categoryName resolves a possibly dangling category reference.
func (s *productService) categoryName(categoryID *uint) string {
	if categoryID == nil {
		return model.UncategorizedLabel
	}
	category, err := s.categoryRepo.FindByID(*categoryID)
	if err != nil {
		return model.UncategorizedLabel
	}
	return category.Name
}

func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func (s *productService) CreateProduct(ctx context.Context, sellerID *uint, input ProductInput, image *storage.Upload) (*model.Product, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.SellerEmail = strings.TrimSpace(input.SellerEmail)

	logger.Info("Creating product", map[string]interface{}{
		"title":     input.Title,
		"seller_id": sellerID,
	})

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkUpload(image, storage.ImageExtensions); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	product := &model.Product{
		Title:          input.Title,
		Description:    strings.TrimSpace(input.Description),
		Specifications: ParseSpecifications(input.Specifications),
		Price:          input.Price,
		Active:         active,
		ExpiresAt:      input.ExpiresAt,
		SellerID:       optionalID(sellerID),
		SellerEmail:    input.SellerEmail,
		CategoryID:     optionalID(input.CategoryID),
		SubCategoryID:  optionalID(input.SubCategoryID),
	}

	err := persistWithUpload(ctx, s.files, storage.FolderProducts, image,
		func(path string) error {
			product.Image = path
			return s.productRepo.Create(product)
		},
		func() error {
			return s.productRepo.Delete(product.ID)
		},
	)
	if err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"title": input.Title,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"active":     product.Active,
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductUpdateInput, image *storage.Upload) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if err := checkUpload(image, storage.ImageExtensions); err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Specifications != nil {
		product.Specifications = ParseSpecifications(*input.Specifications)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.SellerEmail != nil {
		product.SellerEmail = strings.TrimSpace(*input.SellerEmail)
	}
	if input.CategoryID != nil {
		product.CategoryID = optionalID(input.CategoryID)
	}
	if input.SubCategoryID != nil {
		product.SubCategoryID = optionalID(input.SubCategoryID)
	}
	if input.ExpiresAt != nil {
		product.ExpiresAt = input.ExpiresAt
	}

	if product.Title == "" {
		return nil, validationError("title is required")
	}
	if err := checkPrice(product.Price); err != nil {
		return nil, err
	}

	oldImage := product.Image
	err = persistWithUpload(ctx, s.files, storage.FolderProducts, image,
		func(path string) error {
			if path != "" {
				product.Image = path
			}
			return s.productRepo.Update(product)
		},
		func() error {
			product.Image = oldImage
			return s.productRepo.Update(product)
		},
	)
	if err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	if image != nil && oldImage != "" && oldImage != product.Image {
		removeFileBestEffort(ctx, s.files, oldImage)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
	})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	removeFileBestEffort(ctx, s.files, product.Image)

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *productService) ToggleActive(id uint) (bool, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return false, err
	}

	active := !product.Active
	if err := s.productRepo.SetActive(id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProductNotFound
		}
		return false, err
	}

	logger.Info("Product active flag toggled", map[string]interface{}{
		"product_id": id,
		"active":     active,
	})
	return active, nil
}

// PurgeOlderThan irreversibly deletes every product created more than days
// ago, along with cart rows and images.
func (s *productService) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, ErrInvalidPurgeAge
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := s.productRepo.DeleteCreatedBefore(cutoff)
	if err != nil {
		return 0, err
	}
	for _, p := range removed {
		removeFileBestEffort(ctx, s.files, p.Image)
	}

	logger.Info("Old products purged", map[string]interface{}{
		"days":  days,
		"count": len(removed),
	})
	return len(removed), nil
}

func (s *productService) ExportProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
