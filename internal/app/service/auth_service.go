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
	"github.com/agrifarma/agrifarma-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenRevoker records logged-out session tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type RegisterInput struct {
	Name       string `validate:"required,min=2,max=100"`
	Email      string `validate:"required,email,max=120"`
	Password   string `validate:"required,min=6"`
	Mobile     string `validate:"max=20"`
	Location   string `validate:"max=120"`
	Profession string `validate:"max=120"`
	Expertise  string `validate:"max=120"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput, picture *storage.Upload) (*model.User, error)
	Login(email, password string) (*model.User, *util.SessionToken, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	files         storage.FileStore
	revoker       TokenRevoker
	jwtSecret     string
	sessionExpiry time.Duration
}

// NewAuthService builds the service. revoker may be nil, in which case
// logout only clears the client cookie.
func NewAuthService(
	userRepo repository.UserRepository,
	files storage.FileStore,
	revoker TokenRevoker,
	jwtSecret string,
	sessionExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		files:         files,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		sessionExpiry: sessionExpiry,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput, picture *storage.Upload) (*model.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": input.Email,
	})

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkUpload(picture, storage.ImageExtensions); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, ErrDuplicateEmail
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordTooShort) {
			return nil, validationError("password must be at least %d characters", util.MinPasswordLength)
		}
		logger.Error("Failed to hash password", err)
		return nil, err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		Mobile:       input.Mobile,
		Location:     input.Location,
		Profession:   input.Profession,
		Expertise:    input.Expertise,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}

	err = persistWithUpload(ctx, s.files, storage.FolderAvatars, picture,
		func(path string) error {
			user.Picture = path
			if err := s.userRepo.Create(user); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicateEmail
				}
				return err
			}
			return nil
		},
		func() error {
			return s.userRepo.Delete(user.ID)
		},
	)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.SessionToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateSessionToken(util.SessionSubject{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	}, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil || token == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, token, ttl); err != nil {
		logger.Error("Failed to revoke session token", err)
		return err
	}
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
