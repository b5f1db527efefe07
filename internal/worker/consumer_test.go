package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/provider"
	"github.com/storekart/storekart/internal/queue"
	"github.com/storekart/storekart/internal/repository"
	"github.com/storekart/storekart/internal/service"

	"github.com/hibiken/asynq"
)

type fixedCartRepo struct {
	repository.AbandonedCartRepository
	cart   *models.AbandonedCart
	marked bool
}

func (r *fixedCartRepo) GetByID(_ uint) (*models.AbandonedCart, error) {
	return r.cart, nil
}

func (r *fixedCartRepo) MarkReminderSent(_ uint, _ int, _ time.Time) (bool, error) {
	r.marked = true
	return true, nil
}

type fixedStoreRepo struct {
	repository.StoreRepository
}

func (fixedStoreRepo) GetByID(_ uint) (*models.Store, error) {
	return &models.Store{ID: 1, MerchantID: 1, Name: "Demo", Status: constants.StoreStatusActive}, nil
}

type emptySettingRepo struct{}

func (emptySettingRepo) GetByStoreAndKey(_ uint, _ string) (*models.StoreSetting, error) {
	return nil, nil
}

func (emptySettingRepo) Upsert(_ uint, _ string, _ models.JSON) (*models.StoreSetting, error) {
	return nil, nil
}

type countingSender struct {
	sent int
}

func (s *countingSender) SendRecoveryReminder(_ string, _ service.RecoveryReminderInput) error {
	s.sent++
	return nil
}

func TestIsTerminalRecoveryError(t *testing.T) {
	cases := []struct {
		err      error
		terminal bool
	}{
		{service.ErrCartNotFound, true},
		{service.ErrCartNotActive, true},
		{service.ErrNoContactInfo, true},
		{service.ErrSequenceComplete, true},
		{service.ErrReminderNotDue, true},
		{service.ErrEmailServiceDisabled, false},
		{errors.New("smtp timeout"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := isTerminalRecoveryError(tc.err); got != tc.terminal {
			t.Fatalf("error %v: expected terminal=%v, got %v", tc.err, tc.terminal, got)
		}
	}
}

func TestHandleRecoveryEmailBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskRecoveryEmail, []byte("{not json"))
	if err := consumer.handleRecoveryEmail(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
}

func TestHandleRecoveryEmailZeroCartSkipped(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	payloadTask, err := queue.NewRecoveryEmailTask(queue.RecoveryEmailPayload{CartID: 0, Sequence: 1})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleRecoveryEmail(context.Background(), payloadTask); err != nil {
		t.Fatalf("zero cart id must be dropped silently, got %v", err)
	}
}

func TestHandleRecoveryEmailNilService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	payloadTask, err := queue.NewRecoveryEmailTask(queue.RecoveryEmailPayload{CartID: 5, Sequence: 1})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleRecoveryEmail(context.Background(), payloadTask); err != nil {
		t.Fatalf("missing service must not raise a retry, got %v", err)
	}
}

func TestHandleRecoveryEmailStaleTaskDropped(t *testing.T) {
	// Reminder 1 was already delivered; a second task for sequence 1, left
	// over from a double enqueue, must be acked without sending reminder 2
	// ahead of its tier.
	cartRepo := &fixedCartRepo{cart: &models.AbandonedCart{
		ID:                 9,
		StoreID:            1,
		Email:              "buyer@example.com",
		RecoveryStatus:     constants.RecoveryStatusActive,
		RecoveryEmailsSent: 1,
		RecoveryToken:      "tok-9",
	}}
	sender := &countingSender{}
	consumer := NewConsumer(&provider.Container{
		RecoveryService: service.NewRecoveryService(
			fixedStoreRepo{},
			cartRepo,
			service.NewSettingsService(emptySettingRepo{}),
			sender,
		),
	})

	task, err := queue.NewRecoveryEmailTask(queue.RecoveryEmailPayload{CartID: 9, Sequence: 1})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleRecoveryEmail(context.Background(), task); err != nil {
		t.Fatalf("stale task must be acked, not retried: %v", err)
	}
	if sender.sent != 0 {
		t.Fatalf("stale task must not send, got %d sends", sender.sent)
	}
	if cartRepo.marked {
		t.Fatalf("stale task must not advance the counter")
	}
}

func TestHandleRecoveryEmailDueTaskSends(t *testing.T) {
	cartRepo := &fixedCartRepo{cart: &models.AbandonedCart{
		ID:                 9,
		StoreID:            1,
		Email:              "buyer@example.com",
		RecoveryStatus:     constants.RecoveryStatusActive,
		RecoveryEmailsSent: 1,
		RecoveryToken:      "tok-9",
	}}
	sender := &countingSender{}
	consumer := NewConsumer(&provider.Container{
		RecoveryService: service.NewRecoveryService(
			fixedStoreRepo{},
			cartRepo,
			service.NewSettingsService(emptySettingRepo{}),
			sender,
		),
	})

	task, err := queue.NewRecoveryEmailTask(queue.RecoveryEmailPayload{CartID: 9, Sequence: 2})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleRecoveryEmail(context.Background(), task); err != nil {
		t.Fatalf("due task failed: %v", err)
	}
	if sender.sent != 1 {
		t.Fatalf("expected one send, got %d", sender.sent)
	}
}
