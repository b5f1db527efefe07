package merchant

import (
	"errors"

	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the merchant login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a merchant and issues a session token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	token, account, err := h.MerchantAuthService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid email or password")
		case errors.Is(err, service.ErrMerchantDisabled):
			response.Forbidden(c, "account disabled")
		default:
			logger.Errorw("merchant_login_failed", "error", err)
			response.Internal(c, "login failed")
		}
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"merchant": gin.H{
			"id":    account.ID,
			"email": account.Email,
			"name":  account.Name,
		},
	})
}
