// Package monitor owns the product lifecycle and the polling cycle that
// keeps prices current and drives the alert tracker.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
	"github.com/ternarybob/pricewatch/internal/services/simulator"
	"github.com/ternarybob/pricewatch/internal/services/tracker"
)

// appendThreshold is the elapsed time after which a refresh records a new
// series point even when the price is unchanged, so the series cannot go
// silently stale.
const appendThreshold = 24 * time.Hour

// Clock supplies the current time; injected for tests.
type Clock func() time.Time

// Service manages tracked products: creation with synthetic history,
// refresh cycles, and scheduled polling.
type Service struct {
	storage   interfaces.ProductStorage
	resolver  interfaces.Resolver
	tracker   *tracker.Service
	simulator *simulator.Service
	config    *common.MonitorConfig
	logger    arbor.ILogger
	clock     Clock

	cron    *cron.Cron
	running bool

	// Per-product locks: a product's refresh and its tracker transition
	// form one unit; two refreshes of the same product never interleave.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	horizonDays int
}

// NewService creates a new monitor service
func NewService(storage interfaces.ProductStorage, resolver interfaces.Resolver, alertTracker *tracker.Service, sim *simulator.Service, config *common.MonitorConfig, horizonDays int, logger arbor.ILogger) *Service {
	return &Service{
		storage:     storage,
		resolver:    resolver,
		tracker:     alertTracker,
		simulator:   sim,
		config:      config,
		logger:      logger,
		clock:       time.Now,
		cron:        cron.New(),
		locks:       make(map[string]*sync.Mutex),
		horizonDays: horizonDays,
	}
}

// WithClock sets an injected clock (used by tests).
func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// AddProduct resolves a URL and creates a tracked product with a generated
// historical price series ending at the resolved price's date.
func (s *Service) AddProduct(ctx context.Context, ownerID, url string) (*models.Product, error) {
	resolved, err := s.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	history := s.simulator.Simulate(resolved.Price, s.horizonDays, now)

	product := &models.Product{
		ID:            common.NewProductID(),
		OwnerID:       ownerID,
		URL:           url,
		Title:         resolved.Title,
		CurrentPrice:  resolved.Price,
		Currency:      resolved.Currency,
		ImageURL:      resolved.ImageURL,
		Platform:      resolved.Platform,
		PriceHistory:  history,
		CreatedAt:     now,
		LastCheckedAt: now,
	}

	if err := s.storage.SaveProduct(product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("title", product.Title).
		Float64("base_price", resolved.Price).
		Int("history_points", len(history)).
		Msg("Product added")

	return product, nil
}

// Refresh runs one polling cycle for a product: resolve the current price,
// update the record, and feed the outcome through the alert tracker. On
// resolution failure the error propagates and the tracker is not invoked,
// so a failed cycle never registers as "no change".
func (s *Service) Refresh(ctx context.Context, productID string) (*models.Product, error) {
	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.storage.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	priorPrice := product.CurrentPrice

	resolved, err := s.resolver.Resolve(ctx, product.URL)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	product.CurrentPrice = resolved.Price
	product.LastCheckedAt = now

	// Append a point only when the price moved or the last point is at
	// least a day old; identical same-day observations are not recorded.
	last := product.LastPoint()
	if last == nil || last.Price != resolved.Price || now.Sub(last.Date) >= appendThreshold {
		product.PriceHistory = append(product.PriceHistory, models.PricePoint{
			Price: resolved.Price,
			Date:  now,
		})
	}

	if err := s.storage.SaveProduct(product); err != nil {
		return nil, err
	}

	s.tracker.Apply(productID, priorPrice, resolved.Price)

	s.logger.Debug().
		Str("product_id", productID).
		Float64("prior_price", priorPrice).
		Float64("new_price", resolved.Price).
		Msg("Refresh cycle completed")

	return product, nil
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(productID string) (*models.Product, error) {
	return s.storage.GetProduct(productID)
}

// ListProducts returns all products for an owner, newest first.
func (s *Service) ListProducts(ownerID string) ([]*models.Product, error) {
	return s.storage.ListProducts(ownerID)
}

// DeleteProduct removes a product and any alert state attached to it.
func (s *Service) DeleteProduct(productID string) error {
	if err := s.storage.DeleteProduct(productID); err != nil {
		return err
	}
	s.tracker.Drop(productID)

	s.logger.Info().Str("product_id", productID).Msg("Product deleted")
	return nil
}

// Start begins scheduled polling of all tracked products.
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("monitor already running")
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Price monitor disabled by configuration")
		return nil
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.pollAll); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Price monitor started")

	return nil
}

// Stop halts scheduled polling, waiting for an in-flight poll to finish.
func (s *Service) Stop() {
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Price monitor stopped")
}

// pollAll refreshes every tracked product. Products are independent, so
// failures are logged per product and the poll moves on; a transient fetch
// failure skips that cycle's update without touching alert state.
func (s *Service) pollAll() {
	products, err := s.storage.ListAllProducts()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to list products for polling")
		return
	}

	for _, product := range products {
		ctx := context.Background()
		if _, err := s.Refresh(ctx, product.ID); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", product.ID).
				Msg("Polling refresh failed, skipping cycle")
		}
	}
}

func (s *Service) productLock(productID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}
