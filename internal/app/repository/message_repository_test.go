package repository

import (
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMessageRepository_Lifecycle(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewMessageRepository(testDB)
	msg := &model.ContactMessage{Name: "Visitor", Email: "v@example.com", Message: "Hello", Status: model.MessageUnread}
	require.NoError(t, repo.Create(msg))
	require.NoError(t, repo.Create(&model.ContactMessage{Name: "Other", Email: "o@example.com", Message: "Hi", Status: model.MessageUnread}))

	require.NoError(t, repo.UpdateStatus(msg.ID, model.MessageRead))

	unread := model.MessageUnread
	messages, err := repo.FindAll(&unread)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Other", messages[0].Name)

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(msg.ID))
	_, err = repo.FindByID(msg.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(msg.ID, model.MessageRead), gorm.ErrRecordNotFound)
}
