package repo

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/services/cart/internal/models"
)

func newTestRepo(t *testing.T) (*GormRepo, *gorm.DB) {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}))
	for id := uint(1); id <= 10; id++ {
		require.NoError(t, gdb.Create(&models.User{ID: id}).Error)
	}
	return New(gdb), gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, name, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), ImageURL: "/img/" + name + ".png"}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func countLines(t *testing.T, gdb *gorm.DB, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, gdb, "latte", "100")

	line, err := r.AddToCart(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "latte", line.ProductName)

	line, err = r.AddToCart(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
	assert.EqualValues(t, 1, countLines(t, gdb, 1))
}

func TestAddToCart_ProductNotFound(t *testing.T) {
	r, gdb := newTestRepo(t)

	_, err := r.AddToCart(context.Background(), 1, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, countLines(t, gdb, 1))
}

func TestAddToCart_UnknownUser(t *testing.T) {
	r, gdb := newTestRepo(t)
	p := seedProduct(t, gdb, "latte", "100")

	_, err := r.AddToCart(context.Background(), 99, p.ID, 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, countLines(t, gdb, 99))
}

func TestUserDeleteCascadesToCart(t *testing.T) {
	r, gdb := newTestRepo(t)
	p := seedProduct(t, gdb, "latte", "100")
	_, err := r.AddToCart(context.Background(), 2, p.ID, 3)
	require.NoError(t, err)

	require.NoError(t, gdb.Delete(&models.User{}, 2).Error)
	assert.Zero(t, countLines(t, gdb, 2))
}

func TestAddToCart_ConcurrentAddsKeepOneLine(t *testing.T) {
	r, gdb := newTestRepo(t)
	p := seedProduct(t, gdb, "espresso", "80")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.AddToCart(context.Background(), 7, p.ID, 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, countLines(t, gdb, 7))
	line, err := r.GetItem(context.Background(), 7, p.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*2, line.Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, gdb, "mocha", "150")

	_, _, err := r.UpdateQuantity(ctx, 1, p.ID, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.AddToCart(ctx, 1, p.ID, 5)
	require.NoError(t, err)

	line, removed, err := r.UpdateQuantity(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, line.Quantity)

	line, removed, err = r.UpdateQuantity(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, line)

	_, err = r.GetItem(ctx, 1, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.UpdateQuantity(ctx, 1, p.ID, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p1 := seedProduct(t, gdb, "latte", "100")
	p2 := seedProduct(t, gdb, "cookie", "50")

	for _, id := range []uint{p1.ID, p2.ID} {
		_, err := r.AddToCart(ctx, 1, id, 1)
		require.NoError(t, err)
	}
	_, err := r.AddToCart(ctx, 2, p1.ID, 1)
	require.NoError(t, err)

	ok, err := r.RemoveFromCart(ctx, 1, p1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.RemoveFromCart(ctx, 1, p1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ClearCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ClearCart(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.EqualValues(t, 1, countLines(t, gdb, 2))
}

func TestGetCart_LivePricingAndOrder(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p1 := seedProduct(t, gdb, "latte", "100")
	p2 := seedProduct(t, gdb, "cake", "250")

	_, err := r.AddToCart(ctx, 1, p1.ID, 2)
	require.NoError(t, err)
	_, err = r.AddToCart(ctx, 1, p2.ID, 1)
	require.NoError(t, err)

	require.NoError(t, gdb.Model(&models.Product{}).Where("id = ?", p1.ID).
		Updates(map[string]any{"price": decimal.RequireFromString("120"), "name": "big latte"}).Error)

	lines, dangling, err := r.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, dangling)
	require.Len(t, lines, 2)
	assert.Equal(t, p1.ID, lines[0].ProductID)
	assert.Equal(t, "big latte", lines[0].ProductName)
	assert.True(t, decimal.RequireFromString("240").Equal(lines[0].Total()))
	assert.Equal(t, p2.ID, lines[1].ProductID)

	empty, _, err := r.GetCart(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductDeleteCascadesToCart(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, gdb, "latte", "100")
	_, err := r.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, gdb.Delete(&models.Product{}, p.ID).Error)
	assert.Zero(t, countLines(t, gdb, 1))
}

func TestGetCart_SkipsDanglingLines(t *testing.T) {
	r, gdb := newTestRepo(t)
	ctx := context.Background()
	p1 := seedProduct(t, gdb, "latte", "100")
	p2 := seedProduct(t, gdb, "cake", "250")
	for _, id := range []uint{p1.ID, p2.ID} {
		_, err := r.AddToCart(ctx, 1, id, 1)
		require.NoError(t, err)
	}

	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, gdb.Exec("DELETE FROM products WHERE id = ?", p2.ID).Error)
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)

	lines, dangling, err := r.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dangling)
	require.Len(t, lines, 1)
	assert.Equal(t, p1.ID, lines[0].ProductID)

	_, err = r.GetItem(ctx, 1, p2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductExists(t *testing.T) {
	r, gdb := newTestRepo(t)
	p := seedProduct(t, gdb, "latte", "100")

	ok, err := r.ProductExists(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ProductExists(context.Background(), p.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}
