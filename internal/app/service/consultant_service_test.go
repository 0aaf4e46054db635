package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type consultantFixture struct {
	db       *gorm.DB
	svc      ConsultantService
	files    *recordingFileStore
	root     string
	category *model.Category
}

func setupConsultantServiceTest(t *testing.T) consultantFixture {
	testDB := setupTestDB(t)
	root := t.TempDir()
	local, err := storage.NewLocalStorage(root, "/static")
	require.NoError(t, err)
	files := &recordingFileStore{FileStore: local}

	category := &model.Category{Name: "Livestock"}
	require.NoError(t, testDB.Create(category).Error)

	svc := NewConsultantService(
		repository.NewConsultantRepository(testDB),
		repository.NewCategoryRepository(testDB),
		files,
	)
	return consultantFixture{db: testDB, svc: svc, files: files, root: root, category: category}
}

func (f consultantFixture) application(name, email string) ConsultantApplication {
	return ConsultantApplication{
		Name:                name,
		Email:               email,
		Phone:               "+92 300 1234567",
		ExpertiseCategoryID: f.category.ID,
		Bio:                 strings.Repeat("Veterinary advisor for dairy farms. ", 4),
	}
}

func TestConsultantService_ApplyNormalizesEmail(t *testing.T) {
	f := setupConsultantServiceTest(t)

	c, err := f.svc.Apply(context.Background(), f.application("John", "  JOHN@X.com "), nil)
	require.NoError(t, err)
	assert.Equal(t, "john@x.com", c.Email)
	assert.Equal(t, model.ConsultantPending, c.Status)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestConsultantService_ApplyDuplicateEmailIgnoresCase(t *testing.T) {
	f := setupConsultantServiceTest(t)

	_, err := f.svc.Apply(context.Background(), f.application("John", "JOHN@X.com"), nil)
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), f.application("Jane", "john@x.com"), testUpload("jane.png"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var count int64
	f.db.Model(&model.Consultant{}).Count(&count)
	assert.Equal(t, int64(1), count)
	// Rejected before anything was staged
	assert.Empty(t, f.files.discarded)
}

func TestConsultantService_ApplyValidation(t *testing.T) {
	f := setupConsultantServiceTest(t)
	ctx := context.Background()

	short := f.application("John", "john@x.com")
	short.Bio = "too short"
	_, err := f.svc.Apply(ctx, short, nil)
	assert.ErrorIs(t, err, ErrValidation)

	badPhone := f.application("John", "john@x.com")
	badPhone.Phone = "123"
	_, err = f.svc.Apply(ctx, badPhone, nil)
	assert.ErrorIs(t, err, ErrValidation)

	noCategory := f.application("John", "john@x.com")
	noCategory.ExpertiseCategoryID = 9999
	_, err = f.svc.Apply(ctx, noCategory, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Apply(ctx, f.application("John", "john@x.com"), testUpload("pic.gif"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConsultantService_ApplyWithPicture(t *testing.T) {
	f := setupConsultantServiceTest(t)

	c, err := f.svc.Apply(context.Background(), f.application("John", "john@x.com"), testUpload("john.JPG"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ProfilePicture, "uploads/consultants/"))

	_, err = os.Stat(filepath.Join(f.root, c.ProfilePicture))
	assert.NoError(t, err)
}

func TestConsultantService_ApplyPromoteFailureLeavesNoRow(t *testing.T) {
	f := setupConsultantServiceTest(t)
	f.files.failPromote = true

	_, err := f.svc.Apply(context.Background(), f.application("John", "john@x.com"), testUpload("john.png"))
	require.ErrorIs(t, err, ErrUploadFailed)

	var count int64
	f.db.Model(&model.Consultant{}).Count(&count)
	assert.Zero(t, count)
	assert.Len(t, f.files.discarded, 1)
}

func TestConsultantService_DecideAndBrowse(t *testing.T) {
	f := setupConsultantServiceTest(t)

	c, err := f.svc.Apply(context.Background(), f.application("John", "john@x.com"), nil)
	require.NoError(t, err)

	decided, err := f.svc.Decide(c.ID, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultantApproved, decided.Status)
	assert.False(t, decided.UpdatedAt.Before(c.UpdatedAt))

	approved, err := f.svc.Browse(model.ConsultantApproved, nil)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, c.ID, approved[0].ID)
	assert.Equal(t, "Livestock", approved[0].CategoryName)

	pending, err := f.svc.Browse(model.ConsultantPending, nil)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Reviewed consultants are terminal
	_, err = f.svc.Decide(c.ID, ActionReject)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConsultantService_DecideErrors(t *testing.T) {
	f := setupConsultantServiceTest(t)

	c, err := f.svc.Apply(context.Background(), f.application("John", "john@x.com"), nil)
	require.NoError(t, err)

	_, err = f.svc.Decide(c.ID, "promote")
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Decide(9999, ActionApprove)
	assert.ErrorIs(t, err, ErrConsultantNotFound)

	_, err = f.svc.Browse("archived", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConsultantService_Delete(t *testing.T) {
	f := setupConsultantServiceTest(t)
	ctx := context.Background()

	c, err := f.svc.Apply(ctx, f.application("John", "john@x.com"), testUpload("john.png"))
	require.NoError(t, err)
	_, err = f.svc.Decide(c.ID, ActionReject)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, c.ID))
	assert.Equal(t, []string{c.ProfilePicture}, f.files.removed)

	_, err = os.Stat(filepath.Join(f.root, c.ProfilePicture))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID), ErrConsultantNotFound)
}

func TestConsultantService_DeleteSurvivesMissingPicture(t *testing.T) {
	f := setupConsultantServiceTest(t)
	ctx := context.Background()

	c, err := f.svc.Apply(ctx, f.application("John", "john@x.com"), testUpload("john.png"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.root, c.ProfilePicture)))

	assert.NoError(t, f.svc.Delete(ctx, c.ID))
}

func TestConsultantService_Dashboard(t *testing.T) {
	f := setupConsultantServiceTest(t)
	ctx := context.Background()

	a, err := f.svc.Apply(ctx, f.application("A", "a@x.com"), nil)
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.application("B", "b@x.com"), nil)
	require.NoError(t, err)
	_, err = f.svc.Decide(a.ID, ActionApprove)
	require.NoError(t, err)

	dashboard, err := f.svc.Dashboard()
	require.NoError(t, err)
	assert.Len(t, dashboard.Pending, 1)
	assert.Len(t, dashboard.Approved, 1)
}
