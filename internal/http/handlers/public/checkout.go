package public

import (
	"errors"
	"time"

	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/service"

	"github.com/gin-gonic/gin"
)

// ValidateCartRequest is the checkout validation body.
type ValidateCartRequest struct {
	StoreID       uint                      `json:"store_id" binding:"required"`
	Items         []service.CartItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod string                    `json:"payment_method"`
	CouponCode    string                    `json:"coupon_code"`
	CustomerEmail string                    `json:"customer_email"`
	Region        string                    `json:"region"`
}

// ValidateCart re-validates a client cart and prices it. Partial failures
// return 200 with both surviving items and an errors array; only a cart
// with zero surviving items is a 400.
func (h *Handler) ValidateCart(c *gin.Context) {
	var req ValidateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	validated, itemErrors, err := h.CheckoutService.ValidateItems(req.StoreID, req.Items)
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			response.NotFound(c, "store not found")
			return
		}
		logger.Errorw("cart_validate_failed", "store_id", req.StoreID, "error", err)
		response.Internal(c, "cart validation failed")
		return
	}
	if len(validated) == 0 {
		c.JSON(400, gin.H{
			"success": false,
			"valid":   false,
			"items":   []service.ValidatedCartItem{},
			"errors":  itemErrors,
		})
		return
	}

	settings, err := h.SettingsService.ResolveCheckout(c.Request.Context(), req.StoreID)
	if err != nil {
		logger.Errorw("cart_validate_settings_failed", "store_id", req.StoreID, "error", err)
		response.Internal(c, "cart validation failed")
		return
	}

	subtotal := sumLineTotals(validated)
	couponResult := service.CouponResult{}
	if req.CouponCode != "" {
		couponResult, err = h.CouponService.ValidateCoupon(
			req.StoreID, req.CouponCode, req.CustomerEmail, subtotal, time.Now())
		if err != nil {
			logger.Errorw("cart_validate_coupon_failed", "store_id", req.StoreID, "error", err)
			response.Internal(c, "cart validation failed")
			return
		}
	}

	totals := h.PricingService.CalculateCartTotal(validated, settings, req.PaymentMethod, req.Region, couponResult)

	body := gin.H{
		"success": true,
		"valid":   len(itemErrors) == 0,
		"items":   validated,
		"totals":  totals,
	}
	if len(itemErrors) > 0 {
		body["errors"] = itemErrors
	}
	if req.CouponCode != "" {
		body["coupon"] = couponSummary(couponResult)
	}
	c.JSON(200, body)
}

// CheckInventoryRequest is the availability probe body.
type CheckInventoryRequest struct {
	StoreID uint                      `json:"store_id" binding:"required"`
	Items   []service.CartItemRequest `json:"items" binding:"required,min=1"`
}

// CheckInventory answers per-line stock availability.
func (h *Handler) CheckInventory(c *gin.Context) {
	var req CheckInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	items, available, err := h.CheckoutService.CheckInventory(req.StoreID, req.Items)
	if err != nil {
		logger.Errorw("check_inventory_failed", "store_id", req.StoreID, "error", err)
		response.Internal(c, "inventory check failed")
		return
	}
	c.JSON(200, gin.H{
		"success":   true,
		"available": available,
		"items":     items,
	})
}

func sumLineTotals(items []service.ValidatedCartItem) models.Money {
	total := models.NewMoneyFromInt(0)
	for _, item := range items {
		total = models.NewMoneyFromDecimal(total.Add(item.LineTotal.Decimal))
	}
	return total
}

func couponSummary(result service.CouponResult) gin.H {
	summary := gin.H{
		"valid":            result.Valid,
		"discount_amount":  result.DiscountAmount,
		"is_free_shipping": result.IsFreeShipping,
	}
	if !result.Valid {
		summary["reason"] = result.Reason
	}
	if result.Coupon != nil {
		summary["code"] = result.Coupon.Code
	}
	return summary
}
