package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/agrifarma/agrifarma-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.SubCategory{},
		&model.Product{},
		&model.CartItem{},
		&model.Consultant{},
		&model.ContactMessage{},
		&model.ForumCategory{},
		&model.Thread{},
		&model.Reply{},
		&model.BlogCategory{},
		&model.Post{},
		&model.BlogComment{},
		&model.CommentReply{},
		&model.PostLike{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// EnsureAdmin creates the bootstrap admin account when credentials are
// configured and no user with that email exists yet.
func EnsureAdmin(database *gorm.DB, cfg config.AdminConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" || cfg.Password == "" {
		logger.Debug("Admin bootstrap skipped: no credentials configured")
		return nil
	}

	var existing model.User
	err := database.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Debug("Admin bootstrap skipped: account exists", map[string]interface{}{
			"user_id": existing.ID,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := util.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := database.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info("Admin account created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   email,
	})
	return nil
}
