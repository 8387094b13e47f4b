package models

import (
	"time"
)

// AlertTTL is how long a price-change alert stays live after first detection.
const AlertTTL = 24 * time.Hour

// Alert tracks an open price-change window for one product. At most one
// alert exists per product at any time. OldPrice is pinned to the price seen
// before the first change of the window; NewPrice slides with each further
// change while the window stays open.
type Alert struct {
	ProductID       string    `json:"product_id"`
	OldPrice        float64   `json:"old_price"`
	NewPrice        float64   `json:"new_price"`
	FirstDetectedAt time.Time `json:"first_detected_at"`
	Acknowledged    bool      `json:"acknowledged"`
}

// ExpiredAt reports whether the alert window has passed its TTL at the
// given instant.
func (a *Alert) ExpiredAt(now time.Time) bool {
	return now.Sub(a.FirstDetectedAt) > AlertTTL
}

// SurfaceableAt reports whether the alert should be shown to the user: it
// exists, has not been acknowledged, and has not expired.
func (a *Alert) SurfaceableAt(now time.Time) bool {
	return a != nil && !a.Acknowledged && !a.ExpiredAt(now)
}

// Direction describes which way the price moved across the window.
func (a *Alert) Direction() string {
	if a.NewPrice < a.OldPrice {
		return "dropped"
	}
	return "raised"
}
