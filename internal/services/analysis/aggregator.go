// Package analysis derives weekly statistics from a price series and
// renders them into the analytical context consumed by the explainer.
package analysis

import (
	"math"

	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/models"
)

// WindowSize is the number of points aggregated into one summary.
const WindowSize = 7

// Aggregate partitions an ordered price series into consecutive windows of
// up to WindowSize points (the final window may hold fewer) and computes
// per-window statistics. Windows are contiguous and cover the whole series.
// An empty series is rejected with ErrMalformedSeries.
func Aggregate(series []models.PricePoint) ([]models.WeekSummary, error) {
	if len(series) == 0 {
		return nil, interfaces.ErrMalformedSeries
	}

	summaries := make([]models.WeekSummary, 0, (len(series)+WindowSize-1)/WindowSize)

	for start := 0; start < len(series); start += WindowSize {
		end := start + WindowSize
		if end > len(series) {
			end = len(series)
		}
		summaries = append(summaries, summarizeWindow(series[start:end], len(summaries)+1))
	}

	return summaries, nil
}

func summarizeWindow(window []models.PricePoint, index int) models.WeekSummary {
	minPrice := window[0].Price
	maxPrice := window[0].Price
	sum := 0.0
	for _, p := range window {
		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
		sum += p.Price
	}

	avgPrice := math.Round(sum / float64(len(window)))
	startPrice := window[0].Price
	endPrice := window[len(window)-1].Price
	changeAbs := endPrice - startPrice

	// A zero start price would make the percent change undefined; report
	// 0% rather than propagate NaN.
	changePct := 0.0
	if startPrice != 0 {
		changePct = changeAbs / startPrice * 100
	}

	trend := models.TrendStable
	if math.Abs(changePct) >= 1 {
		if changePct > 0 {
			trend = models.TrendIncreasing
		} else {
			trend = models.TrendDecreasing
		}
	}

	volatility := maxPrice - minPrice

	return models.WeekSummary{
		Index:          index,
		StartDate:      window[0].Date,
		EndDate:        window[len(window)-1].Date,
		AvgPrice:       avgPrice,
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		StartPrice:     startPrice,
		EndPrice:       endPrice,
		ChangeAbs:      changeAbs,
		ChangePct:      changePct,
		Trend:          trend,
		VolatilityAbs:  volatility,
		HighVolatility: volatility > avgPrice*0.05,
		PointCount:     len(window),
	}
}
