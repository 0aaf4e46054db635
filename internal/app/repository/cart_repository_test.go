package repository

import (
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)

	user := &model.User{
		Email:        "farmer@example.com",
		PasswordHash: "hash",
		Name:         "Farmer",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Title:  "Urea 50kg",
		Price:  1500,
		Active: true,
	}
	require.NoError(t, testDB.Create(product).Error)

	return testDB, repo, user, product
}

func TestCartRepository_IncrementMergesRows(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Increment(user.ID, product.ID, 2))
	require.NoError(t, repo.Increment(user.ID, product.ID, 3))

	var count int64
	testDB.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	item, err := repo.FindByUserAndProduct(user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
}

func TestCartRepository_UpdateQuantity(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	err := repo.UpdateQuantity(user.ID, product.ID, 4)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Increment(user.ID, product.ID, 1))
	require.NoError(t, repo.UpdateQuantity(user.ID, product.ID, 4))

	item, err := repo.FindByUserAndProduct(user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
}

func TestCartRepository_DeleteByUserAndProduct(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Increment(user.ID, product.ID, 1))

	removed, err := repo.DeleteByUserAndProduct(user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteByUserAndProduct(user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCartRepository_TotalsSkipInactiveProducts(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	inactive := &model.Product{Title: "Old seed", Price: 999, Active: false}
	require.NoError(t, testDB.Create(inactive).Error)

	require.NoError(t, repo.Increment(user.ID, product.ID, 2))
	require.NoError(t, repo.Increment(user.ID, inactive.ID, 7))

	totals, err := repo.Totals(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.ItemCount)
	assert.InDelta(t, 3000.0, totals.TotalPrice, 0.001)

	items, err := repo.FindActiveByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].Product.ID)
	assert.Equal(t, "Urea 50kg", items[0].Product.Title)
}

func TestCartRepository_TotalsEmptyCart(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	totals, err := repo.Totals(user.ID)
	require.NoError(t, err)
	assert.Zero(t, totals.ItemCount)
	assert.Zero(t, totals.TotalPrice)
}

func TestCartRepository_DeleteByUserID(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Increment(user.ID, product.ID, 1))
	require.NoError(t, repo.DeleteByUserID(user.ID))
	// Clearing an empty cart is fine
	require.NoError(t, repo.DeleteByUserID(user.ID))

	items, err := repo.FindActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
