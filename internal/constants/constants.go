package constants

// Coupon discount types.
const (
	CouponTypePercentage   = "percentage"
	CouponTypeFixed        = "fixed"
	CouponTypeFreeShipping = "free_shipping"
)

// Coupon rejection reasons, returned in-payload by /coupons/apply.
// Checks run in this order; the first applicable reason wins.
const (
	CouponReasonNotFound         = "not_found"
	CouponReasonInactive         = "inactive"
	CouponReasonExpired          = "expired"
	CouponReasonBelowMinimum     = "below_minimum"
	CouponReasonUsageLimit       = "usage_limit_reached"
	CouponReasonPerCustomerLimit = "per_customer_limit_reached"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodStripe   = "stripe"
	PaymentMethodUPI      = "upi"
)

// Product publication status.
const (
	ProductStatusPublished = "published"
	ProductStatusDraft     = "draft"
	ProductStatusArchived  = "archived"
)

// Store status.
const (
	StoreStatusActive    = "active"
	StoreStatusSuspended = "suspended"
)

// Abandoned-cart recovery lifecycle. Active is the only non-terminal state;
// recovered and expired are terminal and mutually exclusive.
const (
	RecoveryStatusActive    = "active"
	RecoveryStatusRecovered = "recovered"
	RecoveryStatusExpired   = "expired"
)

// MaxRecoveryEmails caps the reminder sequence. The final reminder is never
// re-sent once the counter reaches this value.
const MaxRecoveryEmails = 3

// Queue and task names.
const (
	QueueDefault      = "default"
	TaskRecoveryEmail = "recovery:email"
)

// TopicOrdersCompleted is the Kafka topic carrying order-completion events
// from the order pipeline.
const TopicOrdersCompleted = "orders.completed"

// StoreSettingKeyCheckout is the settings-row key holding a store's checkout
// configuration blob.
const StoreSettingKeyCheckout = "checkout"

// RedisPrefixDefault is the cache key prefix when none is configured.
const RedisPrefixDefault = "sk"

// SiteCurrencyDefault is the platform currency.
const SiteCurrencyDefault = "INR"
