package models

import (
	"time"
)

// PricePoint is a single dated price observation. Points are immutable once
// recorded and a series is ordered oldest-first.
type PricePoint struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Product represents a tracked competitor product and its price series.
type Product struct {
	ID           string       `json:"id"` // prod_{uuid}
	OwnerID      string       `json:"owner_id"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	CurrentPrice float64      `json:"current_price"`
	Currency     string       `json:"currency"`
	ImageURL     string       `json:"image_url"`
	Platform     string       `json:"platform"`

	// PriceHistory grows only by append. CurrentPrice always reflects the
	// latest resolution, which may not have produced a new point (see the
	// monitor append policy).
	PriceHistory []PricePoint `json:"price_history"`

	CreatedAt     time.Time `json:"created_at"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// LastPoint returns the most recent point in the history, or nil for an
// empty series.
func (p *Product) LastPoint() *PricePoint {
	if len(p.PriceHistory) == 0 {
		return nil
	}
	return &p.PriceHistory[len(p.PriceHistory)-1]
}
