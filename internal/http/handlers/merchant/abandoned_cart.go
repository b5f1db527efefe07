package merchant

import (
	"errors"
	"strconv"

	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/repository"
	"github.com/storekart/storekart/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAbandonedCarts pages the merchant's abandoned-cart records. The store
// must belong to the authenticated merchant.
func (h *Handler) ListAbandonedCarts(c *gin.Context) {
	merchantID, ok := merchantIDOf(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	storeID, err := strconv.ParseUint(c.Query("store_id"), 10, 64)
	if err != nil || storeID == 0 {
		response.BadRequest(c, "store_id is required")
		return
	}
	store, err := h.StoreRepo.GetByID(uint(storeID))
	if err != nil {
		logger.Errorw("abandoned_cart_list_store_failed", "store_id", storeID, "error", err)
		response.Internal(c, "listing failed")
		return
	}
	if store == nil || store.MerchantID != merchantID {
		response.NotFound(c, "store not found")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	carts, total, err := h.AbandonedCartService.ListForStore(repository.AbandonedCartListFilter{
		StoreID:  uint(storeID),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		logger.Errorw("abandoned_cart_list_failed", "store_id", storeID, "error", err)
		response.Internal(c, "listing failed")
		return
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	response.SuccessWithPage(c, carts, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// SendRecoveryRequest is the manual send body.
type SendRecoveryRequest struct {
	CartID uint `json:"cart_id" binding:"required"`
}

// SendRecovery fires the next reminder for a cart on demand. Subject to the
// same guards as the scheduled sweep: 404 when the cart is missing or owned
// by another merchant, 400 when it is no longer active, has no email, or
// the sequence is complete.
func (h *Handler) SendRecovery(c *gin.Context) {
	merchantID, ok := merchantIDOf(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req SendRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	sequence, err := h.RecoveryService.SendManual(c.Request.Context(), merchantID, req.CartID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			response.NotFound(c, "cart not found")
		case errors.Is(err, service.ErrCartNotActive):
			response.BadRequest(c, "cart is no longer active")
		case errors.Is(err, service.ErrNoContactInfo):
			response.BadRequest(c, "cart has no contact email")
		case errors.Is(err, service.ErrSequenceComplete):
			response.BadRequest(c, "recovery sequence already complete")
		case errors.Is(err, service.ErrEmailServiceDisabled), errors.Is(err, service.ErrEmailServiceNotConfigured):
			response.BadRequest(c, "email delivery is not configured")
		default:
			logger.Errorw("send_recovery_failed", "cart_id", req.CartID, "error", err)
			response.Internal(c, "recovery send failed")
		}
		return
	}

	response.Success(c, gin.H{"sent": true, "sequence": sequence})
}
