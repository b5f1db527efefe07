package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

type recoveryCartRepoStub struct {
	repository.AbandonedCartRepository

	cart     *models.AbandonedCart
	markOK   bool
	markErr  error
	marked   bool
	expected int
}

func (s *recoveryCartRepoStub) GetByID(_ uint) (*models.AbandonedCart, error) {
	return s.cart, nil
}

func (s *recoveryCartRepoStub) MarkReminderSent(_ uint, expectedSent int, _ time.Time) (bool, error) {
	s.marked = true
	s.expected = expectedSent
	return s.markOK, s.markErr
}

type settingRepoStub struct {
	setting *models.StoreSetting
}

func (s settingRepoStub) GetByStoreAndKey(_ uint, _ string) (*models.StoreSetting, error) {
	return s.setting, nil
}

func (s settingRepoStub) Upsert(_ uint, _ string, _ models.JSON) (*models.StoreSetting, error) {
	return nil, nil
}

type senderStub struct {
	inputs []RecoveryReminderInput
	to     []string
	err    error
}

func (s *senderStub) SendRecoveryReminder(toEmail string, input RecoveryReminderInput) error {
	if s.err != nil {
		return s.err
	}
	s.to = append(s.to, toEmail)
	s.inputs = append(s.inputs, input)
	return nil
}

func activeCart(sent int) *models.AbandonedCart {
	return &models.AbandonedCart{
		ID:                 7,
		StoreID:            1,
		Email:              "buyer@example.com",
		ItemCount:          2,
		Subtotal:           models.NewMoneyFromInt(750),
		RecoveryStatus:     constants.RecoveryStatusActive,
		RecoveryEmailsSent: sent,
		RecoveryToken:      "tok-7",
		AbandonedAt:        time.Now().Add(-2 * time.Hour),
	}
}

func newRecoveryService(cartRepo *recoveryCartRepoStub, sender *senderStub, setting *models.StoreSetting) *RecoveryService {
	return NewRecoveryService(
		storeRepoStub{store: activeStore()},
		cartRepo,
		NewSettingsService(settingRepoStub{setting: setting}),
		sender,
	)
}

func TestSendNextCartNotFound(t *testing.T) {
	svc := newRecoveryService(&recoveryCartRepoStub{}, &senderStub{}, nil)
	_, err := svc.SendNext(context.Background(), 7)
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestSendNextCartNotActive(t *testing.T) {
	cart := activeCart(1)
	cart.RecoveryStatus = constants.RecoveryStatusRecovered
	sender := &senderStub{}
	svc := newRecoveryService(&recoveryCartRepoStub{cart: cart}, sender, nil)
	_, err := svc.SendNext(context.Background(), 7)
	if !errors.Is(err, ErrCartNotActive) {
		t.Fatalf("expected ErrCartNotActive, got %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("no email may leave for a resolved cart")
	}
}

func TestSendNextNoContactInfo(t *testing.T) {
	cart := activeCart(0)
	cart.Email = ""
	svc := newRecoveryService(&recoveryCartRepoStub{cart: cart}, &senderStub{}, nil)
	_, err := svc.SendNext(context.Background(), 7)
	if !errors.Is(err, ErrNoContactInfo) {
		t.Fatalf("expected ErrNoContactInfo, got %v", err)
	}
}

func TestSendNextSequenceComplete(t *testing.T) {
	cart := activeCart(constants.MaxRecoveryEmails)
	sender := &senderStub{}
	svc := newRecoveryService(&recoveryCartRepoStub{cart: cart}, sender, nil)
	_, err := svc.SendNext(context.Background(), 7)
	if !errors.Is(err, ErrSequenceComplete) {
		t.Fatalf("expected ErrSequenceComplete, got %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("completed sequence must never re-send")
	}
}

func TestSendNextAdvancesCounterAfterSend(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(1), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)
	sequence, err := svc.SendNext(context.Background(), 7)
	if err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", sequence)
	}
	if !repo.marked || repo.expected != 1 {
		t.Fatalf("counter must advance guarded on the pre-send value, got expected=%d", repo.expected)
	}
	if len(sender.inputs) != 1 || sender.inputs[0].DiscountCode != "" {
		t.Fatalf("reminders before the last must not carry a discount: %+v", sender.inputs)
	}
}

func TestSendNextFinalReminderCarriesDiscount(t *testing.T) {
	setting := &models.StoreSetting{
		StoreID: 1,
		Key:     constants.StoreSettingKeyCheckout,
		ValueJSON: models.JSON{
			"recovery_discount_code": "comeback10",
			"recovery_discount_pct":  float64(10),
		},
	}
	repo := &recoveryCartRepoStub{cart: activeCart(2), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, setting)
	sequence, err := svc.SendNext(context.Background(), 7)
	if err != nil {
		t.Fatalf("send returned error: %v", err)
	}
	if sequence != 3 {
		t.Fatalf("expected sequence 3, got %d", sequence)
	}
	if sender.inputs[0].DiscountCode != "COMEBACK10" || sender.inputs[0].DiscountPct != 10 {
		t.Fatalf("final reminder must carry the incentive, got %+v", sender.inputs[0])
	}
}

func TestSendNextSendFailureLeavesCounterUntouched(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(0)}
	sender := &senderStub{err: errors.New("smtp timeout")}
	svc := newRecoveryService(repo, sender, nil)
	_, err := svc.SendNext(context.Background(), 7)
	if err == nil {
		t.Fatalf("expected send failure to surface")
	}
	if repo.marked {
		t.Fatalf("counter must only advance after a confirmed send")
	}
}

func TestSendNextLostRaceStillReportsSuccess(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(0), markOK: false}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)
	sequence, err := svc.SendNext(context.Background(), 7)
	if err != nil {
		t.Fatalf("a lost persistence race is not a send failure: %v", err)
	}
	if sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", sequence)
	}
}

func TestSendManualChecksOwnership(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(0), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)

	if _, err := svc.SendManual(context.Background(), 2, 7); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("foreign merchant must see not-found, got %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("no email may leave on an ownership failure")
	}

	if _, err := svc.SendManual(context.Background(), 1, 7); err != nil {
		t.Fatalf("owner send failed: %v", err)
	}
}

func TestSendScheduledStaleSequenceRefused(t *testing.T) {
	// Reminder 1 already delivered; a leftover task for sequence 1 must not
	// fire reminder 2 early.
	repo := &recoveryCartRepoStub{cart: activeCart(1), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)

	_, err := svc.SendScheduled(context.Background(), 7, 1)
	if !errors.Is(err, ErrReminderNotDue) {
		t.Fatalf("expected ErrReminderNotDue for a stale task, got %v", err)
	}
	if len(sender.to) != 0 {
		t.Fatalf("no email may leave for a stale task")
	}
	if repo.marked {
		t.Fatalf("counter must not move for a stale task")
	}
}

func TestSendScheduledCurrentSequenceSends(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(1), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)

	sequence, err := svc.SendScheduled(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", sequence)
	}
	if len(sender.to) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.to))
	}
}

func TestSendScheduledZeroSequenceSendsNext(t *testing.T) {
	repo := &recoveryCartRepoStub{cart: activeCart(0), markOK: true}
	sender := &senderStub{}
	svc := newRecoveryService(repo, sender, nil)

	sequence, err := svc.SendScheduled(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", sequence)
	}
}
