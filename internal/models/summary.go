package models

import (
	"time"
)

// Trend classifies the start-to-end price movement of a window.
type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// WeekSummary is the derived statistics for one window of up to seven
// consecutive price points. Summaries are recomputed on demand and never
// persisted.
type WeekSummary struct {
	Index          int       `json:"week"` // 1-based
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AvgPrice       float64   `json:"avg_price"`
	MinPrice       float64   `json:"min_price"`
	MaxPrice       float64   `json:"max_price"`
	StartPrice     float64   `json:"start_price"`
	EndPrice       float64   `json:"end_price"`
	ChangeAbs      float64   `json:"price_change"`
	ChangePct      float64   `json:"price_change_percent"`
	Trend          Trend     `json:"trend"`
	VolatilityAbs  float64   `json:"volatility"`
	HighVolatility bool      `json:"is_high_volatility"`
	PointCount     int       `json:"days_in_week"`
}
