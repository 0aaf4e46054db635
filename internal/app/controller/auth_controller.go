package controller

import (
	"net/http"
	"time"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	apperrors "github.com/agrifarma/agrifarma-backend/internal/errors"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const registerPath = "/auth/register"

type AuthController struct {
	authService service.AuthService
	session     config.SessionConfig
}

func NewAuthController(authService service.AuthService, session config.SessionConfig) *AuthController {
	return &AuthController{
		authService: authService,
		session:     session,
	}
}

type RegisterRequest struct {
	Name       string `form:"name" json:"name"`
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Mobile     string `form:"mobile" json:"mobile"`
	Location   string `form:"location" json:"location"`
	Profession string `form:"profession" json:"profession"`
	Expertise  string `form:"expertise" json:"expertise"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register creates an account with an optional profile picture
// POST /auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(c, bindError(err), "register user", registerPath)
		return
	}

	picture, closePicture, err := formUpload(c, "picture")
	if err != nil {
		respondError(c, err, "register user", registerPath)
		return
	}
	defer closePicture()

	user, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Mobile:     req.Mobile,
		Location:   req.Location,
		Profession: req.Profession,
		Expertise:  req.Expertise,
	}, picture)
	if err != nil {
		respondError(c, err, "register user", registerPath)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful! Please log in.",
			"user":    user,
		})
		return
	}
	redirectWithFlash(c, flash.Success, "Registration successful! Please log in.", middleware.LoginPath)
}

// Login verifies credentials and issues the session cookie
// POST /auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Email and password are required")
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondJSONError(c, err, "login")
		return
	}

	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.session.CookieName, token.Token, maxAge, "/", "", ctrl.session.Secure, true)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Welcome back, " + user.Name + "!",
		"user":       user,
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
		"next":       safeLocalPath(c.Query("next"), "/"),
	})
}

// Logout revokes the session and clears the cookie
// POST /auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	auth := middleware.GetAuth(c)

	if err := ctrl.authService.Logout(c.Request.Context(), auth.Token, auth.ExpiresAt); err != nil {
		// The cookie is still cleared; the token expires on its own.
		middleware.GetLoggerFromContext(c).Error("Failed to revoke session on logout", err, map[string]interface{}{
			"user_id": auth.UserID,
		})
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.session.CookieName, "", -1, "/", "", ctrl.session.Secure, true)

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
		return
	}
	redirectWithFlash(c, flash.Info, "You have been logged out.", "/")
}

// Me returns the current user
// GET /auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	auth := middleware.GetAuth(c)

	user, err := ctrl.authService.GetUserByID(auth.UserID)
	if err != nil {
		respondJSONError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
