package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ProductStorage implements the ProductStorage interface for Badger
type ProductStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewProductStorage creates a new ProductStorage instance
func NewProductStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ProductStorage {
	return &ProductStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ProductStorage) SaveProduct(product *models.Product) error {
	if product.ID == "" {
		return fmt.Errorf("product ID is required")
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(product.ID, product); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (s *ProductStorage) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Store().Get(id, &product); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (s *ProductStorage) ListProducts(ownerID string) ([]*models.Product, error) {
	var products []models.Product
	if err := s.db.Store().Find(&products, badgerhold.Where("OwnerID").Eq(ownerID)); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	// Newest first, matching the dashboard ordering
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	result := make([]*models.Product, len(products))
	for i := range products {
		result[i] = &products[i]
	}
	return result, nil
}

func (s *ProductStorage) ListAllProducts() ([]*models.Product, error) {
	var products []models.Product
	if err := s.db.Store().Find(&products, nil); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	result := make([]*models.Product, len(products))
	for i := range products {
		result[i] = &products[i]
	}
	return result, nil
}

func (s *ProductStorage) DeleteProduct(id string) error {
	if err := s.db.Store().Delete(id, &models.Product{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
