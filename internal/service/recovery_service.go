package service

import (
	"context"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

// ReminderSender delivers one reminder. Satisfied by EmailService.
type ReminderSender interface {
	SendRecoveryReminder(toEmail string, input RecoveryReminderInput) error
}

// RecoveryService decides which reminder fires next for an abandoned cart
// and enforces the guards that keep the sequence bounded.
type RecoveryService struct {
	storeRepo repository.StoreRepository
	cartRepo  repository.AbandonedCartRepository
	settings  *SettingsService
	email     ReminderSender
}

// NewRecoveryService creates a recovery service.
func NewRecoveryService(
	storeRepo repository.StoreRepository,
	cartRepo repository.AbandonedCartRepository,
	settings *SettingsService,
	email ReminderSender,
) *RecoveryService {
	return &RecoveryService{
		storeRepo: storeRepo,
		cartRepo:  cartRepo,
		settings:  settings,
		email:     email,
	}
}

// SendNext sends the next reminder in a cart's sequence. Guards, in order:
// the cart must exist, still be active, carry an email, and have reminders
// left. Only the final reminder attaches the store's incentive code. The
// send happens before the counter is persisted, so a crash between the two
// can duplicate a reminder but never under-count one.
func (s *RecoveryService) SendNext(ctx context.Context, cartID uint) (int, error) {
	return s.SendScheduled(ctx, cartID, 0)
}

// SendScheduled delivers a reminder a sweep enqueued. The sequence the
// sweep computed must still be the next one due; a stale task, left over
// when the cron endpoint and the worker ticker both enqueued the same cart
// or when a backlog spans two sweep ticks, is refused rather than fired
// one tier early.
func (s *RecoveryService) SendScheduled(ctx context.Context, cartID uint, sequence int) (int, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, ErrCartNotFound
	}
	if sequence > 0 && cart.RecoveryEmailsSent+1 != sequence {
		return 0, ErrReminderNotDue
	}
	return s.sendNext(ctx, cart)
}

// SendManual is the merchant "send recovery now" action. Ownership is
// checked before any state is touched; a cart in another merchant's store
// is indistinguishable from a missing one.
func (s *RecoveryService) SendManual(ctx context.Context, merchantID, cartID uint) (int, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, ErrCartNotFound
	}
	store, err := s.storeRepo.GetByID(cart.StoreID)
	if err != nil {
		return 0, err
	}
	if store == nil || store.MerchantID != merchantID {
		return 0, ErrCartNotFound
	}
	return s.sendNext(ctx, cart)
}

func (s *RecoveryService) sendNext(ctx context.Context, cart *models.AbandonedCart) (int, error) {
	if cart.RecoveryStatus != constants.RecoveryStatusActive {
		return 0, ErrCartNotActive
	}
	if cart.Email == "" {
		return 0, ErrNoContactInfo
	}
	if cart.RecoveryEmailsSent >= constants.MaxRecoveryEmails {
		return 0, ErrSequenceComplete
	}
	sequence := cart.RecoveryEmailsSent + 1

	store, err := s.storeRepo.GetByID(cart.StoreID)
	if err != nil {
		return 0, err
	}
	if store == nil {
		return 0, ErrStoreNotFound
	}

	input := RecoveryReminderInput{
		StoreName:     store.Name,
		Sequence:      sequence,
		ItemCount:     cart.ItemCount,
		Subtotal:      cart.Subtotal,
		RecoveryToken: cart.RecoveryToken,
	}
	if sequence == constants.MaxRecoveryEmails {
		resolved, err := s.settings.ResolveCheckout(ctx, cart.StoreID)
		if err != nil {
			logger.Warnw("recovery_settings_resolve_failed",
				"cart_id", cart.ID, "store_id", cart.StoreID, "error", err)
		} else {
			input.DiscountCode = resolved.RecoveryDiscountCode
			input.DiscountPct = resolved.RecoveryDiscountPct
		}
	}

	if err := s.email.SendRecoveryReminder(cart.Email, input); err != nil {
		logger.Warnw("recovery_email_send_failed",
			"cart_id", cart.ID,
			"sequence", sequence,
			"error", err)
		return 0, err
	}

	advanced, err := s.cartRepo.MarkReminderSent(cart.ID, cart.RecoveryEmailsSent, time.Now())
	if err != nil {
		return sequence, err
	}
	if !advanced {
		// The email went out but another actor moved the record first. The
		// delivery is reported as success; the counter stays where the
		// winner left it.
		logger.Warnw("recovery_counter_race_lost",
			"cart_id", cart.ID,
			"sequence", sequence)
		return sequence, nil
	}

	logger.Infow("recovery_email_sent",
		"cart_id", cart.ID,
		"store_id", cart.StoreID,
		"sequence", sequence)
	return sequence, nil
}
