package service

import (
	"context"
	"testing"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type memoryRevoker struct {
	tokens map[string]time.Duration
}

func (m *memoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.tokens[token] = ttl
	return nil
}

func setupAuthService(t *testing.T, revoker TokenRevoker) (AuthService, *recordingFileStore) {
	testDB := setupTestDB(t)
	files := &recordingFileStore{FileStore: newTestFileStore(t)}
	return NewAuthService(repository.NewUserRepository(testDB), files, revoker, testSecret, time.Hour), files
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:     "Farah Khan",
		Email:    " Farah@Example.com ",
		Password: "password123",
		Mobile:   "03001234567",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	user, err := svc.Register(context.Background(), validRegistration(), testUpload("me.png"))
	require.NoError(t, err)
	assert.Equal(t, "farah@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Contains(t, user.Picture, "uploads/avatars/")

	loggedIn, token, err := svc.Login("FARAH@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := util.ValidateToken(token.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	_, err := svc.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration(), nil)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := setupAuthService(t, nil)

	input := validRegistration()
	input.Email = "not-an-email"
	_, err := svc.Register(context.Background(), input, nil)
	assert.ErrorIs(t, err, ErrValidation)

	input = validRegistration()
	input.Password = "123"
	_, err = svc.Register(context.Background(), input, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), validRegistration(), testUpload("virus.exe"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_RegisterUndoneWhenPromoteFails(t *testing.T) {
	svc, files := setupAuthService(t, nil)
	files.failPromote = true

	_, err := svc.Register(context.Background(), validRegistration(), testUpload("me.png"))
	require.Error(t, err)
	assert.Len(t, files.discarded, 1)

	// The row was removed, so the same email can register again
	files.failPromote = false
	_, err = svc.Register(context.Background(), validRegistration(), nil)
	assert.NoError(t, err)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	_, err := svc.Register(context.Background(), validRegistration(), nil)
	require.NoError(t, err)

	_, _, err = svc.Login("farah@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	revoker := &memoryRevoker{tokens: map[string]time.Duration{}}
	svc, _ := setupAuthService(t, revoker)

	require.NoError(t, svc.Logout(context.Background(), "tok", time.Now().Add(time.Hour)))
	assert.Contains(t, revoker.tokens, "tok")

	// Expired tokens need no revocation
	require.NoError(t, svc.Logout(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.NotContains(t, revoker.tokens, "old")
}

func TestAuthService_LogoutWithoutRevoker(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	assert.NoError(t, svc.Logout(context.Background(), "tok", time.Now().Add(time.Hour)))
}

func TestAuthService_GetUserByID(t *testing.T) {
	svc, _ := setupAuthService(t, nil)
	_, err := svc.GetUserByID(42)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}
