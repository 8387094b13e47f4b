// Package tracker maintains per-product price-change alert windows across
// repeated refresh cycles. A window opens on the first change seen, pins
// the pre-change price as its baseline, slides its latest price on further
// changes, and closes on acknowledgment-plus-quiet-cycle or after 24 hours.
package tracker

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
)

// Clock supplies the current time. Injected so expiry is testable.
type Clock func() time.Time

// Service owns the alert state for all products. All reads and writes of a
// product's alert funnel through the same transition so the scheduled poll
// and a manual refresh can never diverge.
type Service struct {
	storage interfaces.AlertStorage
	logger  arbor.ILogger
	clock   Clock

	mu     sync.Mutex
	alerts map[string]*models.Alert
}

// NewService creates a tracker backed by the given alert storage, loading
// persisted alerts and pruning any that are already acknowledged or
// expired.
func NewService(storage interfaces.AlertStorage, logger arbor.ILogger) (*Service, error) {
	return NewServiceWithClock(storage, logger, time.Now)
}

// NewServiceWithClock creates a tracker with an injected clock.
func NewServiceWithClock(storage interfaces.AlertStorage, logger arbor.ILogger, clock Clock) (*Service, error) {
	s := &Service{
		storage: storage,
		logger:  logger,
		clock:   clock,
		alerts:  make(map[string]*models.Alert),
	}

	if err := s.loadAndPrune(); err != nil {
		return nil, err
	}

	return s, nil
}

// loadAndPrune restores persisted alerts, dropping acknowledged or expired
// records on the way in.
func (s *Service) loadAndPrune() error {
	if s.storage == nil {
		return nil
	}

	persisted, err := s.storage.ListAlerts()
	if err != nil {
		return err
	}

	now := s.clock()
	kept := 0
	for _, alert := range persisted {
		if alert.Acknowledged || alert.ExpiredAt(now) {
			if err := s.storage.DeleteAlert(alert.ProductID); err != nil {
				s.logger.Warn().Err(err).Str("product_id", alert.ProductID).Msg("Failed to prune stale alert")
			}
			continue
		}
		s.alerts[alert.ProductID] = alert
		kept++
	}

	s.logger.Info().
		Int("loaded", kept).
		Int("pruned", len(persisted)-kept).
		Msg("Alert state restored")

	return nil
}

// Apply runs one state-machine transition for a product after a completed
// refresh cycle, given the price before the cycle and the price it
// resolved. Transitions for a product must be applied in refresh-completion
// order; the internal lock serializes racing callers.
func (s *Service) Apply(productID string, priorPrice, newPrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	existing := s.alerts[productID]
	expired := existing != nil && existing.ExpiredAt(now)

	if newPrice != priorPrice {
		// Price changed this cycle
		if existing == nil || existing.Acknowledged || expired {
			// Start a new alert window
			s.put(&models.Alert{
				ProductID:       productID,
				OldPrice:        priorPrice,
				NewPrice:        newPrice,
				FirstDetectedAt: now,
				Acknowledged:    false,
			})
			return
		}

		// Keep the pinned baseline, slide only the latest price
		updated := *existing
		updated.NewPrice = newPrice
		s.put(&updated)
		return
	}

	// No change this cycle
	if existing == nil {
		return
	}
	if existing.Acknowledged || expired {
		s.remove(productID)
	}
	// Otherwise keep the live window surfaced untouched
}

// Acknowledge marks a product's alert as acknowledged. Idempotent; a
// missing alert is a no-op. The record is kept until the next quiet cycle
// clears it, so a further change within the window opens a fresh baseline.
func (s *Service) Acknowledge(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.alerts[productID]
	if existing == nil || existing.Acknowledged {
		return
	}

	updated := *existing
	updated.Acknowledged = true
	s.put(&updated)
}

// Get returns the product's alert if it is currently surfaceable (present,
// unacknowledged, unexpired), or nil.
func (s *Service) Get(productID string) *models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.alerts[productID]
	if existing == nil || !existing.SurfaceableAt(s.clock()) {
		return nil
	}

	copied := *existing
	return &copied
}

// Peek returns the product's alert regardless of surfaceability, or nil.
// Acknowledged-but-unexpired windows are visible here so explanation
// requests can still reference their prices.
func (s *Service) Peek(productID string) *models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.alerts[productID]
	if existing == nil {
		return nil
	}

	copied := *existing
	return &copied
}

// Drop removes any alert state for a product (used when the product itself
// is deleted).
func (s *Service) Drop(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(productID)
}

func (s *Service) put(alert *models.Alert) {
	s.alerts[alert.ProductID] = alert
	if s.storage != nil {
		if err := s.storage.SaveAlert(alert); err != nil {
			s.logger.Warn().Err(err).Str("product_id", alert.ProductID).Msg("Failed to persist alert")
		}
	}
}

func (s *Service) remove(productID string) {
	delete(s.alerts, productID)
	if s.storage != nil {
		if err := s.storage.DeleteAlert(productID); err != nil {
			s.logger.Warn().Err(err).Str("product_id", productID).Msg("Failed to delete persisted alert")
		}
	}
}
