package common

import (
	"github.com/google/uuid"
)

// NewProductID generates a unique product ID with the "prod_" prefix
// Format: prod_<uuid>
func NewProductID() string {
	return "prod_" + uuid.New().String()
}
