// Package public serves the storefront checkout endpoints. No
// authentication; every request is scoped by an explicit store_id and the
// store's own catalog is the only data it can reach.
package public

import (
	"github.com/storekart/storekart/internal/provider"
)

// Handler holds the public endpoint dependencies.
type Handler struct {
	*provider.Container
}

// NewHandler creates a public handler.
func NewHandler(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
