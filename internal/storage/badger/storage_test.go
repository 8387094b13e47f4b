package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "pricewatch-test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testProduct(id, ownerID string, createdAt time.Time) *models.Product {
	return &models.Product{
		ID:           id,
		OwnerID:      ownerID,
		URL:          "https://www.amazon.in/dp/" + id,
		Title:        "Product " + id,
		CurrentPrice: 2500,
		Currency:     "INR",
		Platform:     "Amazon",
		PriceHistory: []models.PricePoint{
			{Price: 2400, Date: createdAt.AddDate(0, 0, -1)},
			{Price: 2500, Date: createdAt},
		},
		CreatedAt:     createdAt,
		LastCheckedAt: createdAt,
	}
}

func TestProductStorage_SaveAndGet(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveProduct(testProduct("prod_1", "alice", created)))

	product, err := storage.GetProduct("prod_1")
	require.NoError(t, err)
	assert.Equal(t, "alice", product.OwnerID)
	assert.Equal(t, 2500.0, product.CurrentPrice)
	assert.Len(t, product.PriceHistory, 2)
}

func TestProductStorage_SaveRequiresID(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())
	assert.Error(t, storage.SaveProduct(&models.Product{}))
}

func TestProductStorage_GetMissing(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())

	_, err := storage.GetProduct("prod_missing")
	assert.ErrorIs(t, err, interfaces.ErrProductNotFound)
}

func TestProductStorage_UpsertOverwrites(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	product := testProduct("prod_1", "alice", created)
	require.NoError(t, storage.SaveProduct(product))

	product.CurrentPrice = 2600
	product.PriceHistory = append(product.PriceHistory, models.PricePoint{Price: 2600, Date: created.Add(time.Hour)})
	require.NoError(t, storage.SaveProduct(product))

	stored, err := storage.GetProduct("prod_1")
	require.NoError(t, err)
	assert.Equal(t, 2600.0, stored.CurrentPrice)
	assert.Len(t, stored.PriceHistory, 3)
}

func TestProductStorage_ListByOwnerNewestFirst(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveProduct(testProduct("prod_old", "alice", base)))
	require.NoError(t, storage.SaveProduct(testProduct("prod_new", "alice", base.Add(time.Hour))))
	require.NoError(t, storage.SaveProduct(testProduct("prod_other", "bob", base)))

	products, err := storage.ListProducts("alice")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "prod_new", products[0].ID)
	assert.Equal(t, "prod_old", products[1].ID)

	all, err := storage.ListAllProducts()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductStorage_Delete(t *testing.T) {
	storage := NewProductStorage(newTestDB(t), arbor.NewLogger())
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveProduct(testProduct("prod_1", "alice", created)))
	require.NoError(t, storage.DeleteProduct("prod_1"))

	_, err := storage.GetProduct("prod_1")
	assert.ErrorIs(t, err, interfaces.ErrProductNotFound)

	assert.ErrorIs(t, storage.DeleteProduct("prod_1"), interfaces.ErrProductNotFound)
}

func TestAlertStorage_RoundTrip(t *testing.T) {
	storage := NewAlertStorage(newTestDB(t), arbor.NewLogger())
	detected := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveAlert(&models.Alert{
		ProductID:       "prod_1",
		OldPrice:        2500,
		NewPrice:        2250,
		FirstDetectedAt: detected,
	}))

	alert, err := storage.GetAlert("prod_1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 2500.0, alert.OldPrice)
	assert.Equal(t, 2250.0, alert.NewPrice)
	assert.True(t, alert.FirstDetectedAt.Equal(detected))
}

func TestAlertStorage_MissingAlertIsNil(t *testing.T) {
	storage := NewAlertStorage(newTestDB(t), arbor.NewLogger())

	alert, err := storage.GetAlert("prod_missing")
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestAlertStorage_DeleteIsIdempotent(t *testing.T) {
	storage := NewAlertStorage(newTestDB(t), arbor.NewLogger())

	require.NoError(t, storage.SaveAlert(&models.Alert{ProductID: "prod_1", OldPrice: 1, NewPrice: 2}))
	require.NoError(t, storage.DeleteAlert("prod_1"))
	require.NoError(t, storage.DeleteAlert("prod_1"))

	alert, err := storage.GetAlert("prod_1")
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestAlertStorage_List(t *testing.T) {
	storage := NewAlertStorage(newTestDB(t), arbor.NewLogger())

	require.NoError(t, storage.SaveAlert(&models.Alert{ProductID: "prod_1", OldPrice: 1, NewPrice: 2}))
	require.NoError(t, storage.SaveAlert(&models.Alert{ProductID: "prod_2", OldPrice: 3, NewPrice: 4}))

	alerts, err := storage.ListAlerts()
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestKVStorage_SetGetCaseInsensitive(t *testing.T) {
	storage := NewKVStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "Anthropic_API_Key", "sk-123", "explainer key"))

	value, err := storage.Get(ctx, "anthropic_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", value)

	value, err = storage.Get(ctx, "  ANTHROPIC_API_KEY  ")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", value)
}

func TestKVStorage_GetMissing(t *testing.T) {
	storage := NewKVStorage(newTestDB(t), arbor.NewLogger())

	_, err := storage.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestKVStorage_SetPreservesCreatedAt(t *testing.T) {
	storage := NewKVStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "key1", "first", ""))

	pairs, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	created := pairs[0].CreatedAt

	require.NoError(t, storage.Set(ctx, "key1", "second", ""))

	pairs, err = storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "second", pairs[0].Value)
	assert.True(t, pairs[0].CreatedAt.Equal(created))
}

func TestKVStorage_Delete(t *testing.T) {
	storage := NewKVStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "key1", "value", ""))
	require.NoError(t, storage.Delete(ctx, "KEY1"))
	require.NoError(t, storage.Delete(ctx, "key1"), "deleting a missing key is not an error")

	_, err := storage.Get(ctx, "key1")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestManager_ProvidesAllStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricewatch-test.db")
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	defer manager.Close()

	assert.NotNil(t, manager.ProductStorage())
	assert.NotNil(t, manager.AlertStorage())
	assert.NotNil(t, manager.KeyValueStorage())
}
