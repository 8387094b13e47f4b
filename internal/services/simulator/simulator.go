// Package simulator generates synthetic historical price series with
// realistic seasonal structure. A new product has no observed history, so a
// 180-day backfill is generated from its current price: prices hold steady
// for 1-3 days at a time, dip during seasonal sale windows, and drift
// upward slightly across the horizon.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pricewatch/internal/models"
)

// DefaultHorizonDays is the default history length. The generated series
// has one point per day plus the reference day itself.
const DefaultHorizonDays = 180

// RandSource supplies the randomness used by the generator. Tests inject a
// deterministic source; production uses math/rand.
type RandSource interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

type systemRand struct {
	rng *rand.Rand
}

func (r *systemRand) Float64() float64 { return r.rng.Float64() }
func (r *systemRand) Intn(n int) int   { return r.rng.Intn(n) }

// Service generates price series.
type Service struct {
	rand   RandSource
	logger arbor.ILogger
}

// NewService creates a simulator backed by a time-seeded random source.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		rand:   &systemRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))},
		logger: logger,
	}
}

// NewServiceWithRand creates a simulator with an injected random source.
func NewServiceWithRand(source RandSource, logger arbor.ILogger) *Service {
	return &Service{
		rand:   source,
		logger: logger,
	}
}

// Simulate produces horizonDays+1 daily points ending at referenceDate,
// oldest first. Prices are multiples of 10 and strictly positive for a
// positive basePrice. A basePrice of 0 yields an all-zero series.
func (s *Service) Simulate(basePrice float64, horizonDays int, referenceDate time.Time) []models.PricePoint {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	history := make([]models.PricePoint, 0, horizonDays+1)
	// Seed is rounded like every generated price so the leading points
	// before the first change day are already multiples of 10
	currentPrice := math.Round(basePrice/10) * 10
	lastChangeDay := 0
	daysUntilNextChange := s.rand.Intn(3) + 1 // 1-3 days

	for i := horizonDays; i >= 0; i-- {
		date := referenceDate.AddDate(0, 0, -i)
		dayIndex := horizonDays - i

		// Only change price every 1-3 days
		if dayIndex >= lastChangeDay+daysUntilNextChange {
			seasonal := s.seasonalMultiplier(date)

			// Gradual drift across the horizon (~1.5% over 180 days)
			trendFactor := 1 + float64(dayIndex)*0.00008

			// Small random variation when price changes (±0.5%)
			priceVariation := 0.995 + s.rand.Float64()*0.01

			currentPrice = basePrice * seasonal * trendFactor * priceVariation

			// Round to nearest 10 for realistic pricing
			currentPrice = math.Round(currentPrice/10) * 10

			lastChangeDay = dayIndex
			daysUntilNextChange = s.rand.Intn(3) + 1
		}

		history = append(history, models.PricePoint{
			Price: currentPrice,
			Date:  date,
		})
	}

	if s.logger != nil {
		s.logger.Debug().
			Float64("base_price", basePrice).
			Int("points", len(history)).
			Msg("Generated price history")
	}

	return history
}

// seasonalMultiplier selects the discount window for a date. Windows are
// checked in priority order; first match wins.
func (s *Service) seasonalMultiplier(date time.Time) float64 {
	month := date.Month()
	day := date.Day()

	switch {
	// Diwali season (Oct 15 - Nov 15): 10-15% discount
	case (month == time.October && day >= 15) || (month == time.November && day <= 15):
		return 0.85 + s.rand.Float64()*0.10
	// New Year sales (Dec 25 - Jan 10): 8-12% discount
	case (month == time.December && day >= 25) || (month == time.January && day <= 10):
		return 0.88 + s.rand.Float64()*0.08
	// Summer sales (May 15 - Jun 30): 7-10% discount
	case (month == time.May && day >= 15) || month == time.June:
		return 0.90 + s.rand.Float64()*0.07
	// Republic Day sale (Jan 20-26): 5-8% discount
	case month == time.January && day >= 20 && day <= 26:
		return 0.92 + s.rand.Float64()*0.05
	// Regular days: small fluctuations of -2% to +2%
	default:
		return 0.98 + s.rand.Float64()*0.04
	}
}
