package router

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/controller"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController       *controller.AuthController
	productController    *controller.ProductController
	cartController       *controller.CartController
	consultantController *controller.ConsultantController
	categoryController   *controller.CategoryController
	messageController    *controller.MessageController
	forumController      *controller.ForumController
	blogController       *controller.BlogController
	adminController      *controller.AdminController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	consultantController *controller.ConsultantController,
	categoryController *controller.CategoryController,
	messageController *controller.MessageController,
	forumController *controller.ForumController,
	blogController *controller.BlogController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		productController:    productController,
		cartController:       cartController,
		consultantController: consultantController,
		categoryController:   categoryController,
		messageController:    messageController,
		forumController:      forumController,
		blogController:       blogController,
		adminController:      adminController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(flash.Middleware(r.config.Session.Secret, r.config.Session.Secure))
	router.Use(r.authMiddleware.LoadSession())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "AgriFarma API is running",
		})
	})

	router.GET("/flash", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": flash.Pop(c)})
	})

	if r.config.Storage.Backend == "local" {
		router.Static("/static/uploads", filepath.Join(r.config.Storage.RootDir, "uploads"))
	}

	requireLogin := r.authMiddleware.RequireLogin()
	requireAdmin := r.authMiddleware.RequireAdmin()
	requireProductOwner := r.authMiddleware.RequireOwnerOrAdmin(r.productController.ResolveSeller)

	auth := router.Group("/auth")
	{
		auth.POST("/register", r.authController.Register)
		auth.POST("/login", r.authController.Login)
		auth.POST("/logout", requireLogin, r.authController.Logout)
		auth.GET("/me", requireLogin, r.authController.Me)
	}

	shop := router.Group("/shop")
	{
		shop.GET("/", r.productController.ListProducts)
		shop.GET("/products/:id", r.productController.GetProduct)
		shop.GET("/subcategories/:category_id", r.productController.ListSubCategories)
		shop.GET("/cart-count", r.cartController.CartCount)

		shop.GET("/my-products", requireLogin, r.productController.MyProducts)
		shop.POST("/create", requireLogin, r.productController.CreateProduct)
		shop.POST("/products/:id/edit", requireProductOwner, r.productController.EditProduct)
		shop.POST("/products/:id/delete", requireProductOwner, r.productController.DeleteProduct)
		shop.POST("/products/:id/toggle", requireProductOwner, r.productController.ToggleProduct)

		shop.GET("/cart", requireLogin, r.cartController.GetCart)
		shop.POST("/add-to-cart/:id", requireLogin, r.cartController.AddToCart)
		shop.POST("/add-to-cart/:id/ajax", requireLogin, r.cartController.AddToCartAjax)
		shop.POST("/update-cart/:id", requireLogin, r.cartController.UpdateCart)
		shop.POST("/remove-from-cart/:id", requireLogin, r.cartController.RemoveFromCart)
		shop.POST("/clear-cart", requireLogin, r.cartController.ClearCart)
	}

	consultancy := router.Group("/consultancy")
	{
		consultancy.POST("/consultant/apply", r.consultantController.Apply)
		consultancy.GET("/browse", r.consultantController.Browse)
		consultancy.GET("/admin/consultancy", requireAdmin, r.consultantController.Dashboard)
		consultancy.POST("/admin/consultant/:id/:action", requireAdmin, r.consultantController.Act)
	}

	router.POST("/submit-message", r.messageController.SubmitMessage)

	forum := router.Group("/forum")
	{
		forum.GET("/", r.forumController.Home)
		forum.GET("/search", r.forumController.Search)
		forum.GET("/thread/:id", r.forumController.GetThread)
		forum.GET("/category/:id", r.forumController.GetCategory)
		forum.POST("/thread/new", requireLogin, r.forumController.CreateThread)
		forum.POST("/thread/:id/reply", requireLogin, r.forumController.Reply)
	}

	blog := router.Group("/blog")
	{
		blog.GET("/", r.blogController.ListPosts)
		blog.GET("/post/:id", r.blogController.GetPost)
		blog.POST("/create", requireLogin, r.blogController.CreatePost)
		blog.POST("/comment/:id", r.blogController.Comment)
		blog.POST("/comment/:id/reply", r.blogController.ReplyToComment)
		blog.POST("/like/:id", r.blogController.ToggleLike)
	}

	admin := router.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/categories", r.categoryController.ListCategories)
		admin.POST("/categories", r.categoryController.CreateCategory)
		admin.POST("/categories/:id/edit", r.categoryController.UpdateCategory)
		admin.POST("/categories/:id/delete", r.categoryController.DeleteCategory)
		admin.GET("/categories/:id/subcategories", r.categoryController.ListSubCategories)
		admin.POST("/categories/:id/subcategories", r.categoryController.CreateSubCategory)
		admin.POST("/subcategories/:id/edit", r.categoryController.UpdateSubCategory)
		admin.POST("/subcategories/:id/delete", r.categoryController.DeleteSubCategory)

		admin.GET("/products", r.adminController.ListProducts)
		admin.GET("/products/export", r.adminController.ExportProducts)
		admin.POST("/products/cleanup", r.adminController.CleanupProducts)
		admin.POST("/products/:id/toggle", r.adminController.ToggleProduct)
		admin.POST("/products/:id/delete", r.adminController.DeleteProduct)

		admin.GET("/users", r.adminController.ListUsers)
		admin.POST("/users/:id/role", r.adminController.UpdateUserRole)
		admin.POST("/users/:id/delete", r.adminController.DeleteUser)

		admin.GET("/messages", r.messageController.ListMessages)
		admin.GET("/messages/:id", r.messageController.GetMessage)
		admin.POST("/messages/:id/read", r.messageController.MarkRead)
		admin.POST("/messages/:id/delete", r.messageController.DeleteMessage)

		admin.GET("/forum", r.forumController.Dashboard)
		admin.POST("/forum/categories", r.forumController.CreateCategory)
		admin.POST("/forum/categories/:id/delete", r.forumController.DeleteCategory)
		admin.POST("/forum/threads/:id/move", r.forumController.MoveThread)
		admin.POST("/forum/threads/:id/delete", r.forumController.DeleteThread)
		admin.POST("/forum/replies/:id/delete", r.forumController.DeleteReply)

		admin.GET("/blog/categories", r.blogController.ListCategories)
		admin.POST("/blog/categories", r.blogController.CreateCategory)
		admin.POST("/blog/categories/:id/delete", r.blogController.DeleteCategory)
		admin.POST("/blog/posts/:id/delete", r.blogController.DeletePost)
		admin.POST("/blog/comments/:id/delete", r.blogController.DeleteComment)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cors.New(cfg)
	}

	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
