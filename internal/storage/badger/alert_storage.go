package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AlertStorage implements the AlertStorage interface for Badger. Alerts are
// keyed by product id; at most one record exists per product.
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AlertStorage) SaveAlert(alert *models.Alert) error {
	if alert.ProductID == "" {
		return fmt.Errorf("alert product ID is required")
	}

	if err := s.db.Store().Upsert("alert:"+alert.ProductID, alert); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (s *AlertStorage) GetAlert(productID string) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.Store().Get("alert:"+productID, &alert); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

func (s *AlertStorage) ListAlerts() ([]*models.Alert, error) {
	var alerts []models.Alert
	if err := s.db.Store().Find(&alerts, nil); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	result := make([]*models.Alert, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	return result, nil
}

func (s *AlertStorage) DeleteAlert(productID string) error {
	if err := s.db.Store().Delete("alert:"+productID, &models.Alert{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}
