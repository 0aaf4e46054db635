package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/errors"
	"github.com/agrifarma/agrifarma-backend/internal/flash"
	"github.com/agrifarma/agrifarma-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

const authContextKey = "auth"

// Redirect targets used by the guards for form requests.
const (
	LoginPath       = "/auth/login"
	AdminDeniedPath = "/"
	OwnerDeniedPath = "/shop/"
)

const (
	loginFlashText   = "Please log in to access this page."
	deniedFlashText  = "You do not have permission to perform this action."
	revocationWindow = 2 * time.Second
)

// ErrOwnerNotFound is returned by an OwnerResolver when the guarded
// resource does not exist.
var ErrOwnerNotFound = stderrors.New("resource not found")

// AuthContext describes the caller of the current request. Anonymous callers
// get a zero UserID.
type AuthContext struct {
	UserID    uint
	Email     string
	Name      string
	Role      model.UserRole
	Token     string
	ExpiresAt time.Time

	// rejection is the error code of a presented token that was refused
	rejection string
}

func IsAuthenticated(auth *AuthContext) bool {
	return auth != nil && auth.UserID != 0
}

func IsAdmin(auth *AuthContext) bool {
	return IsAuthenticated(auth) && auth.Role == model.RoleAdmin
}

// OwnsOrAdmin reports whether the caller is an admin or the given seller.
// A nil seller is owned by nobody.
func OwnsOrAdmin(auth *AuthContext, sellerID *uint) bool {
	if IsAdmin(auth) {
		return true
	}
	return IsAuthenticated(auth) && sellerID != nil && *sellerID == auth.UserID
}

// RevocationChecker reports whether a session token was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// OwnerResolver returns the seller id of the resource addressed by the
// request, or ErrOwnerNotFound.
type OwnerResolver func(c *gin.Context) (*uint, error)

type AuthMiddleware struct {
	jwtSecret   string
	cookieName  string
	revocations RevocationChecker
}

// NewAuthMiddleware builds the middleware. revocations may be nil.
func NewAuthMiddleware(jwtSecret, cookieName string, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		cookieName:  cookieName,
		revocations: revocations,
	}
}

// LoadSession resolves the caller from the session cookie or a Bearer token
// and stores an AuthContext. Invalid, expired or revoked tokens leave the
// caller anonymous.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := &AuthContext{}
		c.Set(authContextKey, auth)

		token := m.extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Debug("Session token rejected", map[string]interface{}{
				"error": err.Error(),
			})
			auth.rejection = errors.AuthTokenInvalid
			if stderrors.Is(err, util.ErrExpiredToken) {
				auth.rejection = errors.AuthTokenExpired
			}
			c.Next()
			return
		}

		if m.revocations != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), revocationWindow)
			revoked, err := m.revocations.IsRevoked(ctx, token)
			cancel()
			if err != nil {
				log.Error("Failed to check session revocation", err)
				c.Next()
				return
			}
			if revoked {
				log.Debug("Revoked session token presented", map[string]interface{}{
					"user_id": claims.UserID,
				})
				auth.rejection = errors.AuthTokenRevoked
				c.Next()
				return
			}
		}

		auth.UserID = claims.UserID
		auth.Email = claims.Email
		auth.Name = claims.Name
		auth.Role = model.UserRole(claims.Role)
		auth.Token = token
		if claims.ExpiresAt != nil {
			auth.ExpiresAt = claims.ExpiresAt.Time
		}

		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if m.cookieName != "" {
		if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
			return token
		}
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetAuth returns the request's AuthContext, never nil.
func GetAuth(c *gin.Context) *AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if auth, ok := v.(*AuthContext); ok {
			return auth
		}
	}
	return &AuthContext{}
}

// RequireLogin rejects anonymous callers.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(GetAuth(c)) {
			denyAnonymous(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous and non-admin callers.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := GetAuth(c)
		if !IsAuthenticated(auth) {
			denyAnonymous(c)
			return
		}
		if !IsAdmin(auth) {
			denyForbidden(c, errors.AuthzAdminOnly, AdminDeniedPath)
			return
		}
		c.Next()
	}
}

// RequireOwnerOrAdmin lets through admins and the seller of the resource
// that resolve finds.
func (m *AuthMiddleware) RequireOwnerOrAdmin(resolve OwnerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := GetAuth(c)
		if !IsAuthenticated(auth) {
			denyAnonymous(c)
			return
		}

		sellerID, err := resolve(c)
		if err != nil {
			if stderrors.Is(err, ErrOwnerNotFound) {
				errors.NotFound(c, errors.ResourceNotFound, "The requested item was not found")
				c.Abort()
				return
			}
			GetLoggerFromContext(c).Error("Failed to resolve resource owner", err)
			errors.InternalError(c, "")
			c.Abort()
			return
		}

		if !OwnsOrAdmin(auth, sellerID) {
			denyForbidden(c, errors.AuthzOwnerOnly, OwnerDeniedPath)
			return
		}
		c.Next()
	}
}

// WantsJSON reports whether the caller expects a JSON answer rather than a
// redirect. Reads, AJAX calls and JSON bodies are JSON requests.
func WantsJSON(c *gin.Context) bool {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.HasSuffix(c.Request.URL.Path, "/ajax") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}

func denyAnonymous(c *gin.Context) {
	GetLoggerFromContext(c).Warn("Login required", map[string]interface{}{
		"path": c.Request.URL.Path,
	})
	if WantsJSON(c) {
		code, message := errors.AuthUnauthorized, ""
		switch GetAuth(c).rejection {
		case errors.AuthTokenExpired:
			code, message = errors.AuthTokenExpired, "Your session has expired. Please log in again"
		case errors.AuthTokenInvalid:
			code, message = errors.AuthTokenInvalid, "Your session is invalid. Please log in again"
		case errors.AuthTokenRevoked:
			code, message = errors.AuthTokenRevoked, "You have been logged out. Please log in again"
		}
		errors.Unauthorized(c, code, message)
		c.Abort()
		return
	}
	flash.Add(c, flash.Warning, loginFlashText)
	c.Redirect(http.StatusSeeOther, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func denyForbidden(c *gin.Context, code, fallback string) {
	auth := GetAuth(c)
	GetLoggerFromContext(c).Warn("Insufficient permissions", map[string]interface{}{
		"user_id": auth.UserID,
		"role":    auth.Role,
		"path":    c.Request.URL.Path,
	})
	if WantsJSON(c) {
		errors.Forbidden(c, code, deniedFlashText)
		c.Abort()
		return
	}
	flash.Add(c, flash.Error, deniedFlashText)
	c.Redirect(http.StatusSeeOther, fallback)
	c.Abort()
}
