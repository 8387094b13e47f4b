package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/pricewatch/internal/models"
)

// ProductStorage persists tracked products and their price series. The
// series is append-only; SaveProduct writes the full record.
type ProductStorage interface {
	SaveProduct(product *models.Product) error
	GetProduct(id string) (*models.Product, error)
	ListProducts(ownerID string) ([]*models.Product, error)
	ListAllProducts() ([]*models.Product, error)
	DeleteProduct(id string) error
}

// AlertStorage persists price-change alerts keyed by product id so alert
// windows survive process restarts.
type AlertStorage interface {
	SaveAlert(alert *models.Alert) error
	GetAlert(productID string) (*models.Alert, error)
	ListAlerts() ([]*models.Alert, error)
	DeleteAlert(productID string) error
}

// KeyValuePair is a stored key/value entry.
type KeyValuePair struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage provides generic key/value persistence (API keys,
// settings). Keys are case-insensitive.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]KeyValuePair, error)
}

// StorageManager provides access to all storage interfaces.
type StorageManager interface {
	ProductStorage() ProductStorage
	AlertStorage() AlertStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
