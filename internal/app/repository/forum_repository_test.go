package repository

import (
	"testing"
	"time"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type forumFixture struct {
	author  model.User
	pests   model.ForumCategory
	water   model.ForumCategory
	threads []model.Thread
}

func seedForum(t *testing.T, testDB *gorm.DB) forumFixture {
	t.Helper()
	f := forumFixture{
		author: model.User{Name: "Asha", Email: "asha@farm.test", PasswordHash: "x"},
		pests:  model.ForumCategory{Name: "Pests"},
		water:  model.ForumCategory{Name: "Water"},
	}
	require.NoError(t, testDB.Create(&f.author).Error)
	require.NoError(t, testDB.Create(&f.pests).Error)
	require.NoError(t, testDB.Create(&f.water).Error)

	now := time.Now()
	f.threads = []model.Thread{
		{Title: "Aphids on okra", Body: "Try neem", CategoryID: f.pests.ID, AuthorID: f.author.ID, CreatedAt: now.Add(-3 * time.Hour)},
		{Title: "Stem borer", Body: "Pheromone traps?", CategoryID: f.pests.ID, AuthorID: f.author.ID, CreatedAt: now.Add(-2 * time.Hour)},
		{Title: "Drip schedule", Body: "Neem cake with drip?", CategoryID: f.water.ID, AuthorID: f.author.ID, CreatedAt: now.Add(-1 * time.Hour)},
	}
	for i := range f.threads {
		require.NoError(t, testDB.Create(&f.threads[i]).Error)
	}
	return f
}

func TestForumRepository_ThreadQueries(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	repo := NewForumRepository(testDB)
	f := seedForum(t, testDB)

	t.Run("latest newest first", func(t *testing.T) {
		threads, err := repo.FindLatestThreads(2)
		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, "Drip schedule", threads[0].Title)
		assert.Equal(t, "Stem borer", threads[1].Title)
	})

	t.Run("find carries names", func(t *testing.T) {
		thread, err := repo.FindThreadByID(f.threads[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha", thread.AuthorName)
		assert.Equal(t, "Pests", thread.CategoryName)
	})

	t.Run("search title or body", func(t *testing.T) {
		threads, err := repo.SearchThreads("NEEM")
		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, "Drip schedule", threads[0].Title)

		threads, err = repo.SearchThreads("%")
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("related stays in category and skips itself", func(t *testing.T) {
		related, err := repo.FindRelatedThreads(&f.threads[0], 5)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, f.threads[1].ID, related[0].ID)
	})

	t.Run("move", func(t *testing.T) {
		require.NoError(t, repo.MoveThread(f.threads[1].ID, f.water.ID))
		threads, err := repo.FindThreadsByCategory(f.water.ID)
		require.NoError(t, err)
		assert.Len(t, threads, 2)
		assert.ErrorIs(t, repo.MoveThread(9999, f.water.ID), gorm.ErrRecordNotFound)
	})
}

func TestForumRepository_RepliesOldestFirst(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	repo := NewForumRepository(testDB)
	f := seedForum(t, testDB)

	threadID := f.threads[0].ID
	require.NoError(t, repo.CreateReply(&model.Reply{Body: "first", ThreadID: threadID, AuthorID: f.author.ID}))
	require.NoError(t, repo.CreateReply(&model.Reply{Body: "second", ThreadID: threadID, AuthorID: f.author.ID}))

	replies, err := repo.FindReplies(threadID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "first", replies[0].Body)
	assert.Equal(t, "Asha", replies[0].AuthorName)

	require.NoError(t, repo.DeleteReply(replies[0].ID))
	assert.ErrorIs(t, repo.DeleteReply(replies[0].ID), gorm.ErrRecordNotFound)
}

func TestForumRepository_DeleteCategoryTakesThreadsAndReplies(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)
	repo := NewForumRepository(testDB)
	f := seedForum(t, testDB)
	require.NoError(t, repo.CreateReply(&model.Reply{Body: "gone", ThreadID: f.threads[0].ID, AuthorID: f.author.ID}))

	sub := &model.ForumCategory{Name: "Mites", ParentID: &f.water.ID}
	require.NoError(t, repo.CreateCategory(sub))
	count, err := repo.CountSubCategories(f.water.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteCategory(f.pests.ID))

	var threads, replies int64
	testDB.Model(&model.Thread{}).Count(&threads)
	testDB.Model(&model.Reply{}).Count(&replies)
	assert.Equal(t, int64(1), threads)
	assert.Equal(t, int64(0), replies)
	assert.ErrorIs(t, repo.DeleteCategory(f.pests.ID), gorm.ErrRecordNotFound)
}
