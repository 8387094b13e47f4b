package interfaces

import (
	"errors"
)

var (
	// ErrResolutionFailed indicates the resolver could not produce usable
	// product data for a URL. Retryable by the caller; the core never
	// retries internally.
	ErrResolutionFailed = errors.New("product resolution failed")

	// ErrMalformedSeries indicates an empty price series was handed to the
	// aggregator.
	ErrMalformedSeries = errors.New("price series is empty")

	// ErrProductNotFound indicates no product exists for the given id.
	ErrProductNotFound = errors.New("product not found")

	// ErrKeyNotFound indicates a key/value lookup miss.
	ErrKeyNotFound = errors.New("key not found")
)
