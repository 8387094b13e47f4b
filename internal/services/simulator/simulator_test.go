package simulator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fixedRand returns constant values so generated series are deterministic.
type fixedRand struct {
	float float64
	intn  int
}

func (r *fixedRand) Float64() float64 { return r.float }
func (r *fixedRand) Intn(n int) int   { return r.intn % n }

func newTestService() *Service {
	return NewServiceWithRand(&fixedRand{float: 0.5, intn: 0}, arbor.NewLogger())
}

func TestSimulate_PointCount(t *testing.T) {
	svc := newTestService()
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	history := svc.Simulate(1000, 180, ref)

	// One point per day across the horizon plus the reference day itself
	assert.Len(t, history, 181)
}

func TestSimulate_DefaultHorizon(t *testing.T) {
	svc := newTestService()
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Len(t, svc.Simulate(1000, 0, ref), DefaultHorizonDays+1)
	assert.Len(t, svc.Simulate(1000, -5, ref), DefaultHorizonDays+1)
}

func TestSimulate_DatesAscendingEndingAtReference(t *testing.T) {
	svc := newTestService()
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	history := svc.Simulate(1000, 30, ref)
	require.Len(t, history, 31)

	assert.True(t, history[0].Date.Equal(ref.AddDate(0, 0, -30)))
	assert.True(t, history[len(history)-1].Date.Equal(ref))

	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].Date.After(history[i-1].Date),
			"dates must be strictly ascending at index %d", i)
	}
}

func TestSimulate_PricesAreMultiplesOfTen(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	history := svc.Simulate(2499, 180, ref)

	for i, p := range history {
		assert.InDelta(t, 0, math.Mod(p.Price, 10), 1e-9,
			"price at index %d should be a multiple of 10, got %f", i, p.Price)
		assert.Greater(t, p.Price, 0.0, "price at index %d should be positive", i)
	}
}

func TestSimulate_SeedPriceIsRounded(t *testing.T) {
	// With Intn forced to 2 the first change happens on day 3, so the
	// leading three points carry the seed price. A base of 2499 must
	// surface as 2500 on those points, not the raw base.
	svc := NewServiceWithRand(&fixedRand{float: 0.5, intn: 2}, arbor.NewLogger())
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	history := svc.Simulate(2499, 30, ref)
	require.Len(t, history, 31)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 2500.0, history[i].Price,
			"leading point %d should carry the rounded seed", i)
	}
}

func TestSimulate_PricesHoldBetweenChangeDays(t *testing.T) {
	// With Intn forced to 1, the change interval is always 2 days, so every
	// price must repeat for at least two consecutive points.
	svc := NewServiceWithRand(&fixedRand{float: 0.5, intn: 1}, arbor.NewLogger())
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	history := svc.Simulate(1000, 30, ref)

	changes := 0
	for i := 1; i < len(history); i++ {
		if history[i].Price != history[i-1].Price {
			changes++
		}
	}
	assert.LessOrEqual(t, changes, 15, "prices should hold for 2 days between changes")
}

func TestSimulate_ZeroBasePriceYieldsZeroSeries(t *testing.T) {
	svc := newTestService()
	ref := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, p := range svc.Simulate(0, 30, ref) {
		assert.Equal(t, 0.0, p.Price)
	}
}

func TestSimulate_SeasonalDipInDiwaliWindow(t *testing.T) {
	// A deterministic source with Float64=0 gives the deepest discount in
	// each seasonal window and value 0.98 on regular days.
	svc := NewServiceWithRand(&fixedRand{float: 0, intn: 0}, arbor.NewLogger())

	// Reference date inside the Diwali window so the last generated point
	// falls in the discount period.
	ref := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	history := svc.Simulate(10000, 120, ref)

	var diwali, regular []float64
	for _, p := range history {
		m, d := p.Date.Month(), p.Date.Day()
		inDiwali := (m == time.October && d >= 15) || (m == time.November && d <= 15)
		if inDiwali {
			diwali = append(diwali, p.Price)
		} else if m == time.September {
			regular = append(regular, p.Price)
		}
	}
	require.NotEmpty(t, diwali)
	require.NotEmpty(t, regular)

	avgOf := func(values []float64) float64 {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}

	assert.Less(t, avgOf(diwali), avgOf(regular),
		"Diwali window prices should sit below regular-day prices")
}
