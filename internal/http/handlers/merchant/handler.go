// Package merchant serves the JWT-protected dashboard endpoints. Every
// store-scoped read checks ownership against the token's merchant id.
package merchant

import (
	"github.com/storekart/storekart/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler holds the merchant endpoint dependencies.
type Handler struct {
	*provider.Container
}

// NewHandler creates a merchant handler.
func NewHandler(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func merchantIDOf(c *gin.Context) (uint, bool) {
	value, ok := c.Get("merchant_id")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id > 0
}
