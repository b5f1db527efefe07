package service

import (
	"github.com/shopspring/decimal"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"
)

// CartTotals is the priced breakdown of one checkout. Tax is reserved and
// currently always zero.
type CartTotals struct {
	Subtotal models.Money `json:"subtotal"`
	Shipping models.Money `json:"shipping"`
	CODFee   models.Money `json:"cod_fee"`
	Tax      models.Money `json:"tax"`
	Discount models.Money `json:"discount"`
	Total    models.Money `json:"total"`
}

// PricingService combines validated items, settings, payment method, and a
// coupon result into final totals.
type PricingService struct{}

// NewPricingService creates a pricing service.
func NewPricingService() *PricingService {
	return &PricingService{}
}

// CalculateCartTotal runs the pricing steps in fixed order. Each step
// rounds to whole currency units (round half up) so totals are reproducible
// with no sub-unit drift across steps. The discount applies to the subtotal
// only; shipping and the COD fee are never discounted.
func (s *PricingService) CalculateCartTotal(items []ValidatedCartItem, settings StoreSettings, paymentMethod, region string, coupon CouponResult) CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(0)

	shipping := decimal.Zero
	if subtotal.LessThan(settings.FreeShippingThreshold.Decimal) {
		shipping = settings.ZoneRate(region).Decimal.Round(0)
	}
	if coupon.Valid && coupon.IsFreeShipping {
		shipping = decimal.Zero
	}

	codFee := decimal.Zero
	if paymentMethod == constants.PaymentMethodCOD && settings.CODEnabled {
		codFee = settings.CODFee.Decimal.Round(0)
	}

	discount := decimal.Zero
	if coupon.Valid {
		discount = coupon.DiscountAmount.Decimal.Round(0)
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	}

	total := subtotal.Sub(discount).Add(shipping).Add(codFee).Round(0)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return CartTotals{
		Subtotal: models.NewMoneyFromDecimal(subtotal),
		Shipping: models.NewMoneyFromDecimal(shipping),
		CODFee:   models.NewMoneyFromDecimal(codFee),
		Tax:      models.NewMoneyFromInt(0),
		Discount: models.NewMoneyFromDecimal(discount),
		Total:    models.NewMoneyFromDecimal(total),
	}
}
