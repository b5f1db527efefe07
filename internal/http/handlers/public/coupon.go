package public

import (
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/http/response"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"

	"github.com/gin-gonic/gin"
)

// ApplyCouponRequest is the inline coupon check body.
type ApplyCouponRequest struct {
	StoreID       uint         `json:"store_id" binding:"required"`
	CouponCode    string       `json:"coupon_code" binding:"required"`
	CustomerEmail string       `json:"customer_email"`
	Subtotal      models.Money `json:"subtotal"`
}

// Human-readable messages per rejection reason. The machine code travels in
// the error field; these are for inline display.
var couponReasonMessages = map[string]string{
	constants.CouponReasonNotFound:         "This coupon code is not valid.",
	constants.CouponReasonInactive:         "This coupon is no longer active.",
	constants.CouponReasonExpired:          "This coupon has expired.",
	constants.CouponReasonBelowMinimum:     "Your order does not meet the minimum for this coupon.",
	constants.CouponReasonUsageLimit:       "This coupon has reached its usage limit.",
	constants.CouponReasonPerCustomerLimit: "You have already used this coupon.",
}

// ApplyCoupon evaluates a code for inline rendering. Always answers 200;
// a rejected coupon is a payload outcome, not a transport error. Checkout
// clients render the message next to the coupon field and must not treat
// rejection as a failed request.
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.CouponService.ValidateCoupon(
		req.StoreID, req.CouponCode, req.CustomerEmail, req.Subtotal, time.Now())
	if err != nil {
		logger.Errorw("coupon_apply_failed", "store_id", req.StoreID, "error", err)
		response.Internal(c, "coupon check failed")
		return
	}

	if !result.Valid {
		message := couponReasonMessages[result.Reason]
		if message == "" {
			message = "This coupon cannot be applied."
		}
		c.JSON(200, gin.H{
			"valid":   false,
			"message": message,
			"error":   result.Reason,
		})
		return
	}

	finalSubtotal := models.NewMoneyFromDecimal(req.Subtotal.Sub(result.DiscountAmount.Decimal))
	if finalSubtotal.IsNegative() {
		finalSubtotal = models.NewMoneyFromInt(0)
	}
	c.JSON(200, gin.H{
		"valid":            true,
		"coupon":           gin.H{"code": result.Coupon.Code, "discount_type": result.Coupon.DiscountType},
		"discount_amount":  result.DiscountAmount,
		"is_free_shipping": result.IsFreeShipping,
		"final_subtotal":   finalSubtotal,
		"message":          "Coupon applied.",
	})
}
