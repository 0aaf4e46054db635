package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/controller"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/agrifarma/agrifarma-backend/internal/router"
	"github.com/agrifarma/agrifarma-backend/internal/scheduler"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/agrifarma/agrifarma-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting AgriFarma Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"storage":     cfg.Storage.Backend,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.EnsureAdmin(db.GetDB(), cfg.Admin); err != nil {
		logger.Warn("Failed to create bootstrap admin", map[string]interface{}{
			"error": err.Error(),
		})
	}

	files, err := storage.NewFromConfig(cfg.Storage, cfg.S3)
	if err != nil {
		logger.Fatal("Failed to initialize file storage", err)
	}

	// Token revocation is optional; without Redis logout only clears the cookie.
	var revoker service.TokenRevoker
	var revocations middleware.RevocationChecker
	if cfg.Redis.Enabled {
		client, err := redis.Connect(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, session revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer client.Close()
			blacklist := redis.NewTokenBlacklist(client)
			revoker = blacklist
			revocations = blacklist
		}
	}

	// Repositories
	database := db.GetDB()
	userRepo := repository.NewUserRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)
	cartRepo := repository.NewCartRepository(database)
	consultantRepo := repository.NewConsultantRepository(database)
	messageRepo := repository.NewMessageRepository(database)
	forumRepo := repository.NewForumRepository(database)
	blogRepo := repository.NewBlogRepository(database)

	// Services
	authService := service.NewAuthService(userRepo, files, revoker, cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, files, cfg.Shop.DefaultPerPage)
	cartService := service.NewCartService(cartRepo, productRepo)
	consultantService := service.NewConsultantService(consultantRepo, categoryRepo, files)
	messageService := service.NewMessageService(messageRepo)
	forumService := service.NewForumService(forumRepo)
	blogService := service.NewBlogService(blogRepo, files)

	cleanup := scheduler.NewProductCleanupScheduler(productService, cfg.Shop.CleanupSchedule, cfg.Shop.ProductMaxDays)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start product cleanup scheduler", err)
	}
	defer cleanup.Stop()

	r := router.NewRouter(
		controller.NewAuthController(authService, cfg.Session),
		controller.NewProductController(productService, categoryService, files),
		controller.NewCartController(cartService),
		controller.NewConsultantController(consultantService),
		controller.NewCategoryController(categoryService),
		controller.NewMessageController(messageService),
		controller.NewForumController(forumService),
		controller.NewBlogController(blogService),
		controller.NewAdminController(productService, userService, cfg.Shop.ProductMaxDays),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.Session.CookieName, revocations),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
