package service

import (
	"errors"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserListOptions struct {
	Query   string
	Role    string
	Sort    string
	Page    int
	PerPage int
}

type UserService interface {
	ListUsers(opts UserListOptions) ([]model.User, Pagination, error)
	UpdateRole(id uint, role string) (*model.User, error)
	DeleteUser(id uint) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListUsers(opts UserListOptions) ([]model.User, Pagination, error) {
	page, perPage := normalizePage(opts.Page, opts.PerPage, 10)

	filter := repository.UserFilter{
		Search: opts.Query,
		Sort:   opts.Sort,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if opts.Role != "" {
		role := model.UserRole(opts.Role)
		if !role.Valid() {
			return nil, Pagination{}, ErrInvalidRole
		}
		filter.Role = &role
	}

	users, total, err := s.userRepo.FindWithFilter(filter)
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, newPagination(page, perPage, total), nil
}

func (s *userService) UpdateRole(id uint, role string) (*model.User, error) {
	newRole := model.UserRole(role)
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(id, newRole); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.Info("User role updated", map[string]interface{}{
		"user_id": id,
		"role":    newRole,
	})
	return s.userRepo.FindByID(id)
}

func (s *userService) DeleteUser(id uint) error {
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
