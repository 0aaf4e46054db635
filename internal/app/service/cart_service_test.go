package service

import (
	"testing"

	"github.com/agrifarma/agrifarma-backend/internal/app/model"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type cartFixture struct {
	db       *gorm.DB
	svc      CartService
	user     *model.User
	product  *model.Product
	inactive *model.Product
}

func setupCartServiceTest(t *testing.T) cartFixture {
	testDB := setupTestDB(t)

	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: model.RoleUser}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{Title: "Neem Oil", Price: 350, Active: true}
	require.NoError(t, testDB.Create(product).Error)

	inactive := &model.Product{Title: "Discontinued Pesticide", Price: 800, Active: false}
	require.NoError(t, testDB.Create(inactive).Error)

	svc := NewCartService(repository.NewCartRepository(testDB), repository.NewProductRepository(testDB))
	return cartFixture{db: testDB, svc: svc, user: user, product: product, inactive: inactive}
}

func (f cartFixture) rowCount(t *testing.T) int64 {
	var count int64
	require.NoError(t, f.db.Model(&model.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count).Error)
	return count
}

func TestCartService_AddMergesQuantities(t *testing.T) {
	f := setupCartServiceTest(t)

	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 2))
	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 3))

	assert.Equal(t, int64(1), f.rowCount(t))

	cart, err := f.svc.GetCart(f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.InDelta(t, 1750.0, cart.Lines[0].Subtotal, 0.001)
}

func TestCartService_AddRejectsBadInput(t *testing.T) {
	f := setupCartServiceTest(t)

	err := f.svc.Add(f.user.ID, f.product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.ErrorIs(t, err, ErrValidation)

	err = f.svc.Add(f.user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Zero(t, f.rowCount(t))
}

func TestCartService_AddInactiveProduct(t *testing.T) {
	f := setupCartServiceTest(t)

	err := f.svc.Add(f.user.ID, f.inactive.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Zero(t, f.rowCount(t))
}

func TestCartService_SetQuantity(t *testing.T) {
	f := setupCartServiceTest(t)

	_, err := f.svc.SetQuantity(f.user.ID, f.product.ID, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 1))

	removed, err := f.svc.SetQuantity(f.user.ID, f.product.ID, 4)
	require.NoError(t, err)
	assert.False(t, removed)

	totals, err := f.svc.Totals(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), totals.ItemCount)

	removed, err = f.svc.SetQuantity(f.user.ID, f.product.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)

	totals, err = f.svc.Totals(f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, totals.ItemCount)
	assert.Zero(t, totals.TotalPrice)
	assert.Zero(t, f.rowCount(t))
}

func TestCartService_TotalsIgnoreDeactivatedProducts(t *testing.T) {
	f := setupCartServiceTest(t)

	second := &model.Product{Title: "Hand Trowel", Price: 120, Active: true}
	require.NoError(t, f.db.Create(second).Error)

	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 2))
	require.NoError(t, f.svc.Add(f.user.ID, second.ID, 1))

	// Deactivate after it is already in the cart
	require.NoError(t, f.db.Model(second).Update("active", false).Error)

	totals, err := f.svc.Totals(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.ItemCount)
	assert.InDelta(t, 700.0, totals.TotalPrice, 0.001)

	cart, err := f.svc.GetCart(f.user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, totals, cart.Totals)

	// The row itself persists until removed
	assert.Equal(t, int64(2), f.rowCount(t))
}

func TestCartService_RemoveAndClear(t *testing.T) {
	f := setupCartServiceTest(t)

	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 1))

	removed, err := f.svc.Remove(f.user.ID, f.product.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.svc.Remove(f.user.ID, f.product.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, f.svc.Add(f.user.ID, f.product.ID, 1))
	require.NoError(t, f.svc.Clear(f.user.ID))
	require.NoError(t, f.svc.Clear(f.user.ID))
	assert.Zero(t, f.rowCount(t))
}
