package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

// RecoveryEnqueuer hands reminder work to the background queue. Implemented
// by the asynq queue client; nil-safe stubs are enough for tests.
type RecoveryEnqueuer interface {
	EnqueueRecoveryEmail(cartID uint, sequence int) error
}

// RecoveryPolicy tunes the sweep. TierHours are the cart ages at which
// reminders 1..n become due, ascending; carts older than MaxAge expire.
type RecoveryPolicy struct {
	TierHours  []int
	MaxAge     time.Duration
	BatchLimit int
}

// DefaultRecoveryPolicy mirrors the shipped configuration defaults.
func DefaultRecoveryPolicy() RecoveryPolicy {
	return RecoveryPolicy{
		TierHours:  []int{1, 24, 72},
		MaxAge:     168 * time.Hour,
		BatchLimit: 200,
	}
}

func (p RecoveryPolicy) normalized() RecoveryPolicy {
	out := p
	if len(out.TierHours) == 0 {
		out.TierHours = []int{1, 24, 72}
	}
	sort.Ints(out.TierHours)
	if out.MaxAge <= 0 {
		out.MaxAge = 168 * time.Hour
	}
	if out.BatchLimit <= 0 {
		out.BatchLimit = 200
	}
	return out
}

// dueTier returns how many reminders a cart of the given age qualifies for.
func (p RecoveryPolicy) dueTier(age time.Duration) int {
	due := 0
	for _, hours := range p.TierHours {
		if age >= time.Duration(hours)*time.Hour {
			due++
		}
	}
	if due > constants.MaxRecoveryEmails {
		due = constants.MaxRecoveryEmails
	}
	return due
}

// SweepResult summarizes one sweep invocation.
type SweepResult struct {
	CartsChecked int      `json:"cartsChecked"`
	AlertsQueued int      `json:"alertsSent"`
	Expired      int      `json:"expired"`
	Errors       []string `json:"errors,omitempty"`
}

// AbandonedCartService owns the abandoned-cart record lifecycle.
type AbandonedCartService struct {
	storeRepo repository.StoreRepository
	cartRepo  repository.AbandonedCartRepository
	checkout  *CheckoutService
	enqueuer  RecoveryEnqueuer
	policy    RecoveryPolicy
}

// NewAbandonedCartService creates an abandoned-cart service.
func NewAbandonedCartService(
	storeRepo repository.StoreRepository,
	cartRepo repository.AbandonedCartRepository,
	checkout *CheckoutService,
	enqueuer RecoveryEnqueuer,
	policy RecoveryPolicy,
) *AbandonedCartService {
	return &AbandonedCartService{
		storeRepo: storeRepo,
		cartRepo:  cartRepo,
		checkout:  checkout,
		enqueuer:  enqueuer,
		policy:    policy.normalized(),
	}
}

// SaveCartInput is one cart-save call from the storefront.
type SaveCartInput struct {
	StoreID    uint
	CustomerID *uint
	Email      string
	Phone      string
	Items      []CartItemRequest
}

// SaveCart upserts the active record for a store contact. Saves with no
// items or no contact identifier are silent no-ops; there is nothing to
// recover. Items are re-priced from the catalog so the snapshot never holds
// a client-claimed price. Returns nil when nothing was recorded.
func (s *AbandonedCartService) SaveCart(input SaveCartInput) (*models.AbandonedCart, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	hasCustomer := input.CustomerID != nil && *input.CustomerID > 0
	if len(input.Items) == 0 || (email == "" && !hasCustomer) {
		return nil, nil
	}

	validated, _, err := s.checkout.ValidateItems(input.StoreID, input.Items)
	if err != nil {
		return nil, err
	}
	if len(validated) == 0 {
		return nil, nil
	}

	snapshots := make(models.CartItemSnapshots, 0, len(validated))
	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range validated {
		snapshots = append(snapshots, models.CartItemSnapshot{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
		subtotal = subtotal.Add(item.LineTotal.Decimal)
		itemCount += item.Quantity
	}
	subtotalMoney := models.NewMoneyFromDecimal(subtotal)

	now := time.Now()
	existing, err := s.cartRepo.FindActiveByContact(input.StoreID, input.CustomerID, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		merged, err := s.cartRepo.MergeActive(existing.ID, snapshots, subtotalMoney, itemCount, now)
		if err != nil {
			return nil, err
		}
		if merged {
			existing.Items = snapshots
			existing.Subtotal = subtotalMoney
			existing.ItemCount = itemCount
			existing.UpdatedAt = now
			return existing, nil
		}
		// The record left the active state between the read and the merge;
		// fall through and open a fresh sequence.
	}

	cart := &models.AbandonedCart{
		StoreID:        input.StoreID,
		CustomerID:     input.CustomerID,
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		Items:          snapshots,
		Subtotal:       subtotalMoney,
		ItemCount:      itemCount,
		RecoveryStatus: constants.RecoveryStatusActive,
		RecoveryToken:  uuid.NewString(),
		AbandonedAt:    now,
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	logger.Infow("abandoned_cart_created",
		"store_id", input.StoreID,
		"cart_id", cart.ID,
		"item_count", itemCount)
	return cart, nil
}

// Sweep scans one bounded batch of active carts: carts past the maximum age
// expire, carts past an unserved reminder tier get a reminder queued. Each
// cart is handled independently; one failure never aborts the batch. Safe
// to re-run: the conditional status updates and the sent-counter guard make
// a repeated pass a no-op.
func (s *AbandonedCartService) Sweep(now time.Time) SweepResult {
	result := SweepResult{}

	firstTier := time.Duration(s.policy.TierHours[0]) * time.Hour
	cutoff := now.Add(-firstTier)
	carts, err := s.cartRepo.ListActiveAbandonedBefore(cutoff, s.policy.BatchLimit)
	if err != nil {
		logger.Errorw("abandoned_cart_sweep_scan_failed", "error", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, cart := range carts {
		result.CartsChecked++
		age := now.Sub(cart.AbandonedAt)

		if age >= s.policy.MaxAge {
			expired, err := s.cartRepo.TransitionStatus(cart.ID, constants.RecoveryStatusActive, constants.RecoveryStatusExpired)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("cart %d: %v", cart.ID, err))
				continue
			}
			if expired {
				result.Expired++
				logger.Infow("abandoned_cart_expired", "cart_id", cart.ID, "store_id", cart.StoreID)
			}
			continue
		}

		if cart.Email == "" {
			continue
		}
		if cart.RecoveryEmailsSent >= constants.MaxRecoveryEmails {
			continue
		}
		due := s.policy.dueTier(age)
		if cart.RecoveryEmailsSent >= due {
			continue
		}

		sequence := cart.RecoveryEmailsSent + 1
		if s.enqueuer == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cart %d: %v", cart.ID, ErrQueueUnavailable))
			continue
		}
		if err := s.enqueuer.EnqueueRecoveryEmail(cart.ID, sequence); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cart %d: %v", cart.ID, err))
			continue
		}
		result.AlertsQueued++
	}

	logger.Infow("abandoned_cart_sweep_done",
		"carts_checked", result.CartsChecked,
		"alerts_queued", result.AlertsQueued,
		"expired", result.Expired,
		"errors", len(result.Errors))
	return result
}

// MarkRecovered resolves every active record for a store contact after an
// order completes. Terminal: no further reminders fire for those records.
func (s *AbandonedCartService) MarkRecovered(storeID uint, customerID *uint, email string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" && (customerID == nil || *customerID == 0) {
		return 0, nil
	}
	recovered, err := s.cartRepo.RecoverActiveByContact(storeID, customerID, normalized)
	if err != nil {
		return 0, err
	}
	if recovered > 0 {
		logger.Infow("abandoned_cart_recovered",
			"store_id", storeID,
			"email", normalized,
			"count", recovered)
	}
	return recovered, nil
}

// GetByToken fetches a record for a recovery-link landing, nil when the
// token is unknown.
func (s *AbandonedCartService) GetByToken(token string) (*models.AbandonedCart, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil
	}
	return s.cartRepo.GetByToken(trimmed)
}

// ListForStore pages a store's records for the merchant dashboard.
func (s *AbandonedCartService) ListForStore(filter repository.AbandonedCartListFilter) ([]models.AbandonedCart, int64, error) {
	return s.cartRepo.List(filter)
}
