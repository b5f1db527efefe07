package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"

	"gorm.io/gorm"
)

// CouponResult is the outcome of one coupon evaluation. When Valid is
// false, Reason carries exactly one taxonomy value; reasons are never
// aggregated.
type CouponResult struct {
	Valid          bool           `json:"valid"`
	Reason         string         `json:"reason,omitempty"`
	Coupon         *models.Coupon `json:"coupon,omitempty"`
	DiscountAmount models.Money   `json:"discount_amount"`
	IsFreeShipping bool           `json:"is_free_shipping"`
}

// CouponService evaluates and redeems coupon codes.
type CouponService struct {
	db         *gorm.DB
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService creates a coupon service.
func NewCouponService(db *gorm.DB, couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{db: db, couponRepo: couponRepo, usageRepo: usageRepo}
}

// ValidateCoupon evaluates a code against a cart subtotal. It performs no
// mutation; usage_count only moves at order completion via RedeemCoupon.
func (s *CouponService) ValidateCoupon(storeID uint, code, customerEmail string, subtotal models.Money, now time.Time) (CouponResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return CouponResult{Reason: constants.CouponReasonNotFound}, nil
	}

	coupon, err := s.couponRepo.GetByCode(storeID, normalized)
	if err != nil {
		return CouponResult{}, err
	}
	if coupon == nil {
		return CouponResult{Reason: constants.CouponReasonNotFound}, nil
	}

	customerUsed := int64(0)
	email := strings.ToLower(strings.TrimSpace(customerEmail))
	if coupon.PerCustomerLimit > 0 && email != "" {
		customerUsed, err = s.usageRepo.CountByCustomer(coupon.ID, email)
		if err != nil {
			return CouponResult{}, err
		}
	}

	return evaluateCoupon(coupon, customerUsed, subtotal, now), nil
}

// evaluateCoupon is the pure rule core: same coupon row, usage count,
// subtotal, and clock always produce the same result. Checks run in a fixed
// order and the first failure wins.
func evaluateCoupon(coupon *models.Coupon, customerUsed int64, subtotal models.Money, now time.Time) CouponResult {
	if !coupon.IsActive {
		return CouponResult{Reason: constants.CouponReasonInactive}
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return CouponResult{Reason: constants.CouponReasonExpired}
	}
	if subtotal.LessThan(coupon.MinOrderValue.Decimal) {
		return CouponResult{Reason: constants.CouponReasonBelowMinimum}
	}
	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return CouponResult{Reason: constants.CouponReasonUsageLimit}
	}
	if coupon.PerCustomerLimit > 0 && customerUsed >= int64(coupon.PerCustomerLimit) {
		return CouponResult{Reason: constants.CouponReasonPerCustomerLimit}
	}

	result := CouponResult{Valid: true, Coupon: coupon}
	switch coupon.DiscountType {
	case constants.CouponTypePercentage:
		raw := subtotal.Mul(coupon.DiscountValue.Decimal).Div(decimal.NewFromInt(100)).Round(0)
		if raw.GreaterThan(subtotal.Decimal) {
			raw = subtotal.Decimal
		}
		result.DiscountAmount = models.NewMoneyFromDecimal(raw)
	case constants.CouponTypeFixed:
		amount := coupon.DiscountValue.Decimal.Round(0)
		if amount.GreaterThan(subtotal.Decimal) {
			amount = subtotal.Decimal
		}
		result.DiscountAmount = models.NewMoneyFromDecimal(amount)
	case constants.CouponTypeFreeShipping:
		result.DiscountAmount = models.NewMoneyFromInt(0)
		result.IsFreeShipping = true
	default:
		// Unknown type rows should never exist; treat as not applicable
		// rather than granting an undefined discount.
		return CouponResult{Reason: constants.CouponReasonNotFound}
	}
	return result
}

// RedeemCoupon consumes one usage at order completion. The counter moves
// through a conditional update so concurrent checkouts cannot oversell a
// limited coupon; a lost race surfaces as usage_limit_reached.
func (s *CouponService) RedeemCoupon(storeID uint, code, customerEmail, orderNo string, discountAmount models.Money) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	coupon, err := s.couponRepo.GetByCode(storeID, normalized)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		redeemed, err := s.couponRepo.WithTx(tx).RedeemUsage(coupon.ID)
		if err != nil {
			return err
		}
		if !redeemed {
			logger.Warnw("coupon_redeem_limit_hit",
				"store_id", storeID,
				"coupon_id", coupon.ID,
				"order_no", orderNo)
			return ErrCouponUsageLimit
		}
		usage := &models.CouponUsage{
			CouponID:       coupon.ID,
			StoreID:        storeID,
			CustomerEmail:  strings.ToLower(strings.TrimSpace(customerEmail)),
			OrderNo:        orderNo,
			DiscountAmount: discountAmount,
		}
		return s.usageRepo.WithTx(tx).Create(usage)
	})
}
