package service

import (
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(testDB))

	user := &model.User{Name: "Kamran", Email: "k@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	updated, err := svc.UpdateRole(user.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	_, err = svc.UpdateRole(user.ID, "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateRole(999, "user")
	assert.ErrorIs(t, err, ErrUserNotFound)

	users, page, err := svc.ListUsers(UserListOptions{Role: "admin"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 10, page.PerPage)

	_, _, err = svc.ListUsers(UserListOptions{Role: "root"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteUser(user.ID))
	assert.ErrorIs(t, svc.DeleteUser(user.ID), ErrUserNotFound)
}
