package interfaces

import (
	"context"
)

// ResolvedProduct is the data a resolver extracts from a product page.
type ResolvedProduct struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url"`
	Platform string  `json:"platform"`
}

// Resolver turns a product URL into current price and metadata. Resolution
// may involve heavyweight page rendering, so implementations are expected to
// honor generous timeouts via ctx. A failure to produce a price is reported
// as ErrResolutionFailed.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*ResolvedProduct, error)
}
