package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffeemania/pkg/db"
	"github.com/Skotchmaster/coffeemania/pkg/events"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/models"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/repo"
	"github.com/Skotchmaster/coffeemania/services/catalog/internal/transport"
)

type fakeIndex struct {
	err     error
	ids     []uint
	put     []uint
	deleted []uint
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []uint, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.ids)), f.ids, nil
}

func (f *fakeIndex) Put(_ context.Context, p *models.Product) error {
	f.put = append(f.put, p.ID)
	return f.err
}

func (f *fakeIndex) Delete(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func newService(t *testing.T, idx *fakeIndex) (*CatalogService, *events.Recorder) {
	t.Helper()
	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&models.Product{}))
	require.NoError(t, gdb.Exec("CREATE TABLE cart_items (id INTEGER PRIMARY KEY, user_id INTEGER, product_id INTEGER, quantity INTEGER)").Error)

	rec := &events.Recorder{}
	if idx == nil {
		return New(repo.New(gdb), nil, rec), rec
	}
	return New(repo.New(gdb), idx, rec), rec
}

func create(t *testing.T, s *CatalogService, name, price string) *models.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), transport.CreateProductRequest{Name: name, Price: decimal.RequireFromString(price), Category: "coffee"})
	require.NoError(t, err)
	return p
}

func TestCreateProduct_Validation(t *testing.T) {
	s, _ := newService(t, nil)
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, transport.CreateProductRequest{Name: " ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateProduct(ctx, transport.CreateProductRequest{Name: "latte", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreatePatchDelete_IndexAndEvents(t *testing.T) {
	idx := &fakeIndex{}
	s, rec := newService(t, idx)
	ctx := context.Background()

	p := create(t, s, "latte", "2.50")
	name := "oat latte"
	_, err := s.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, p.ID))

	assert.Equal(t, []uint{p.ID, p.ID}, idx.put)
	assert.Equal(t, []uint{p.ID}, idx.deleted)

	var types []string
	for _, r := range rec.Snapshot() {
		assert.Equal(t, events.TopicProducts, r.Topic)
		types = append(types, r.Event.(events.ProductEvent).Type)
	}
	assert.Equal(t, []string{events.ProductCreated, events.ProductUpdated, events.ProductDeleted}, types)

	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestSearch_UsesIndexThenFallsBack(t *testing.T) {
	idx := &fakeIndex{}
	s, _ := newService(t, idx)
	ctx := context.Background()
	latte := create(t, s, "latte", "2.50")
	mocha := create(t, s, "mocha", "3")

	idx.ids = []uint{mocha.ID, latte.ID}
	total, items, err := s.SearchProducts(ctx, "anything", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "mocha", items[0].Name)

	idx.err = errors.New("cluster down")
	total, items, err = s.SearchProducts(ctx, "lat", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "latte", items[0].Name)

	total, items, err = s.SearchProducts(ctx, "   ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestGetByCategory_RequiresCategory(t *testing.T) {
	s, _ := newService(t, nil)
	_, _, err := s.GetByCategory(context.Background(), " ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSeedProducts(t *testing.T) {
	idx := &fakeIndex{}
	s, rec := newService(t, idx)
	ctx := context.Background()

	n, err := s.SeedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(starterMenu), n)
	assert.Len(t, idx.put, n)
	assert.Len(t, rec.Snapshot(), n)

	total, items, err := s.GetByCategory(ctx, "coffee", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, n, total)
	assert.True(t, decimal.NewFromInt(2300).Equal(items[0].Price))
}
