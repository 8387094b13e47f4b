package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
)

func dailySeries(prices []float64) []models.PricePoint {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]models.PricePoint, len(prices))
	for i, price := range prices {
		series[i] = models.PricePoint{Price: price, Date: start.AddDate(0, 0, i)}
	}
	return series
}

func flatSeries(price float64, days int) []models.PricePoint {
	prices := make([]float64, days)
	for i := range prices {
		prices[i] = price
	}
	return dailySeries(prices)
}

func TestAggregate_EmptySeries(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, interfaces.ErrMalformedSeries)

	_, err = Aggregate([]models.PricePoint{})
	assert.ErrorIs(t, err, interfaces.ErrMalformedSeries)
}

func TestAggregate_WindowPartitioning(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		wantWeeks  int
		wantCounts []int
	}{
		{name: "single point", points: 1, wantWeeks: 1, wantCounts: []int{1}},
		{name: "exact week", points: 7, wantWeeks: 1, wantCounts: []int{7}},
		{name: "one spillover point", points: 8, wantWeeks: 2, wantCounts: []int{7, 1}},
		{name: "twenty points", points: 20, wantWeeks: 3, wantCounts: []int{7, 7, 6}},
		{name: "full horizon", points: 181, wantWeeks: 26, wantCounts: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries, err := Aggregate(flatSeries(100, tt.points))
			require.NoError(t, err)
			require.Len(t, summaries, tt.wantWeeks)

			total := 0
			for i, w := range summaries {
				assert.Equal(t, i+1, w.Index, "weeks are numbered from 1")
				if tt.wantCounts != nil {
					assert.Equal(t, tt.wantCounts[i], w.PointCount)
				}
				total += w.PointCount
			}
			// Every point lands in exactly one window
			assert.Equal(t, tt.points, total)
		})
	}
}

func TestAggregate_WindowStatistics(t *testing.T) {
	summaries, err := Aggregate(dailySeries([]float64{100, 110, 90, 120, 100, 100, 105}))
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	w := summaries[0]
	assert.Equal(t, 100.0, w.StartPrice)
	assert.Equal(t, 105.0, w.EndPrice)
	assert.Equal(t, 90.0, w.MinPrice)
	assert.Equal(t, 120.0, w.MaxPrice)
	assert.Equal(t, 104.0, w.AvgPrice) // 725/7 rounded
	assert.Equal(t, 5.0, w.ChangeAbs)
	assert.InDelta(t, 5.0, w.ChangePct, 1e-9)
	assert.Equal(t, 30.0, w.VolatilityAbs)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), w.StartDate)
	assert.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), w.EndDate)
}

func TestAggregate_TrendClassification(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   models.Trend
	}{
		{name: "falling", prices: []float64{100, 100, 90}, want: models.TrendDecreasing},
		{name: "rising", prices: []float64{100, 100, 110}, want: models.TrendIncreasing},
		{name: "flat", prices: []float64{100, 105, 100}, want: models.TrendStable},
		{name: "sub-threshold rise is stable", prices: []float64{1000, 1000, 1009}, want: models.TrendStable},
		{name: "threshold rise is increasing", prices: []float64{1000, 1000, 1010}, want: models.TrendIncreasing},
		{name: "threshold fall is decreasing", prices: []float64{1000, 1000, 990}, want: models.TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries, err := Aggregate(dailySeries(tt.prices))
			require.NoError(t, err)
			assert.Equal(t, tt.want, summaries[0].Trend)
		})
	}
}

func TestAggregate_ZeroStartPrice(t *testing.T) {
	summaries, err := Aggregate(dailySeries([]float64{0, 50, 100}))
	require.NoError(t, err)

	// A zero start price reports 0% instead of a division blowup
	assert.Equal(t, 0.0, summaries[0].ChangePct)
	assert.Equal(t, 100.0, summaries[0].ChangeAbs)
	assert.Equal(t, models.TrendStable, summaries[0].Trend)
}

func TestAggregate_HighVolatilityFlag(t *testing.T) {
	// Range 30 on average 104: above the 5% threshold
	volatile, err := Aggregate(dailySeries([]float64{100, 110, 90, 120, 100, 100, 105}))
	require.NoError(t, err)
	assert.True(t, volatile[0].HighVolatility)

	// Range 4 on average ~102: well below threshold
	calm, err := Aggregate(dailySeries([]float64{100, 102, 104, 100, 102, 104, 100}))
	require.NoError(t, err)
	assert.False(t, calm[0].HighVolatility)

	// Flat series has zero range and is never volatile
	flat, err := Aggregate(flatSeries(100, 7))
	require.NoError(t, err)
	assert.False(t, flat[0].HighVolatility)
}
