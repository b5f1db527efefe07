package service

import "errors"

// ErrStoreNotFound covers both a missing and a suspended store; callers
// never learn which.
var ErrStoreNotFound = errors.New("store not found or inactive")

// Coupon evaluation errors, one per rejection reason in the taxonomy.
var (
	ErrCouponNotFound         = errors.New("coupon not found")
	ErrCouponInactive         = errors.New("coupon inactive")
	ErrCouponExpired          = errors.New("coupon expired")
	ErrCouponBelowMinimum     = errors.New("subtotal below coupon minimum")
	ErrCouponUsageLimit       = errors.New("coupon usage limit reached")
	ErrCouponPerCustomerLimit = errors.New("coupon per-customer limit reached")
)

// Recovery lifecycle errors.
var (
	ErrCartNotFound     = errors.New("abandoned cart not found")
	ErrCartNotActive    = errors.New("abandoned cart is not active")
	ErrNoContactInfo    = errors.New("abandoned cart has no contact email")
	ErrSequenceComplete = errors.New("recovery email sequence already complete")
	ErrReminderNotDue   = errors.New("reminder sequence is not the next due")
	ErrQueueUnavailable = errors.New("task queue unavailable")
)

// Email delivery errors.
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email address")
)

// Merchant auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMerchantDisabled   = errors.New("merchant account disabled")
)
