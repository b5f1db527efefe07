package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

type cartRepoStub struct {
	repository.AbandonedCartRepository

	existing  *models.AbandonedCart
	created   *models.AbandonedCart
	mergedID  uint
	mergeOK   bool
	active    []models.AbandonedCart
	listErr   error
	transient map[uint]string
}

func (s *cartRepoStub) FindActiveByContact(_ uint, _ *uint, _ string) (*models.AbandonedCart, error) {
	return s.existing, nil
}

func (s *cartRepoStub) Create(cart *models.AbandonedCart) error {
	cart.ID = 99
	s.created = cart
	return nil
}

func (s *cartRepoStub) MergeActive(id uint, _ models.CartItemSnapshots, _ models.Money, _ int, _ time.Time) (bool, error) {
	s.mergedID = id
	return s.mergeOK, nil
}

func (s *cartRepoStub) ListActiveAbandonedBefore(_ time.Time, _ int) ([]models.AbandonedCart, error) {
	return s.active, s.listErr
}

func (s *cartRepoStub) TransitionStatus(id uint, _, to string) (bool, error) {
	if s.transient == nil {
		s.transient = map[uint]string{}
	}
	s.transient[id] = to
	return true, nil
}

func (s *cartRepoStub) RecoverActiveByContact(_ uint, _ *uint, _ string) (int64, error) {
	return 2, nil
}

type enqueuerStub struct {
	calls []uint
	seqs  []int
	err   error
}

func (s *enqueuerStub) EnqueueRecoveryEmail(cartID uint, sequence int) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, cartID)
	s.seqs = append(s.seqs, sequence)
	return nil
}

func newCartService(cartRepo *cartRepoStub, enqueuer *enqueuerStub, products ...models.Product) *AbandonedCartService {
	checkout := NewCheckoutService(
		storeRepoStub{store: activeStore()},
		productRepoStub{products: products},
	)
	return NewAbandonedCartService(
		storeRepoStub{store: activeStore()},
		cartRepo,
		checkout,
		enqueuer,
		DefaultRecoveryPolicy(),
	)
}

func TestSaveCartNoopWithoutItems(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{})
	cart, err := svc.SaveCart(SaveCartInput{StoreID: 1, Email: "buyer@example.com"})
	if err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if cart != nil || repo.created != nil {
		t.Fatalf("empty save must be a no-op")
	}
}

func TestSaveCartNoopWithoutContact(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{}, publishedProduct(1, 100))
	cart, err := svc.SaveCart(SaveCartInput{
		StoreID: 1,
		Items:   []CartItemRequest{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if cart != nil || repo.created != nil {
		t.Fatalf("save without contact info must be a no-op")
	}
}

func TestSaveCartCreatesActiveRecord(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{}, publishedProduct(1, 250))
	cart, err := svc.SaveCart(SaveCartInput{
		StoreID: 1,
		Email:   "Buyer@Example.COM",
		Items:   []CartItemRequest{{ProductID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if cart == nil || repo.created == nil {
		t.Fatalf("expected a created record")
	}
	if cart.RecoveryStatus != constants.RecoveryStatusActive {
		t.Fatalf("expected active status, got %q", cart.RecoveryStatus)
	}
	if cart.Email != "buyer@example.com" {
		t.Fatalf("email must be normalized, got %q", cart.Email)
	}
	if cart.RecoveryToken == "" {
		t.Fatalf("expected a recovery token")
	}
	if cart.Subtotal.String() != "500.00" {
		t.Fatalf("expected catalog-priced subtotal 500.00, got %s", cart.Subtotal)
	}
	if cart.RecoveryEmailsSent != 0 {
		t.Fatalf("new record must start with zero reminders sent")
	}
}

func TestSaveCartMergePreservesReminderCounter(t *testing.T) {
	existing := &models.AbandonedCart{
		ID:                 5,
		StoreID:            1,
		Email:              "buyer@example.com",
		RecoveryStatus:     constants.RecoveryStatusActive,
		RecoveryEmailsSent: 2,
		RecoveryToken:      "tok",
	}
	repo := &cartRepoStub{existing: existing, mergeOK: true}
	svc := newCartService(repo, &enqueuerStub{}, publishedProduct(1, 100))
	cart, err := svc.SaveCart(SaveCartInput{
		StoreID: 1,
		Email:   "buyer@example.com",
		Items:   []CartItemRequest{{ProductID: 1, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if repo.mergedID != 5 || repo.created != nil {
		t.Fatalf("expected merge into record 5, not a new record")
	}
	if cart.RecoveryEmailsSent != 2 {
		t.Fatalf("merge must not reset the reminder counter, got %d", cart.RecoveryEmailsSent)
	}
}

func TestSaveCartIgnoresClientPrices(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{}, publishedProduct(1, 300))
	cart, err := svc.SaveCart(SaveCartInput{
		StoreID: 1,
		Email:   "buyer@example.com",
		Items:   []CartItemRequest{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if cart.Items[0].UnitPrice.String() != "300.00" {
		t.Fatalf("snapshot must carry the catalog price, got %s", cart.Items[0].UnitPrice)
	}
}

func TestSweepQueuesDueReminders(t *testing.T) {
	now := time.Now()
	repo := &cartRepoStub{active: []models.AbandonedCart{
		// 2h old, 0 sent: tier 1 due.
		{ID: 1, StoreID: 1, Email: "a@example.com", RecoveryStatus: constants.RecoveryStatusActive, AbandonedAt: now.Add(-2 * time.Hour)},
		// 2h old, 1 already sent: nothing due yet.
		{ID: 2, StoreID: 1, Email: "b@example.com", RecoveryStatus: constants.RecoveryStatusActive, RecoveryEmailsSent: 1, AbandonedAt: now.Add(-2 * time.Hour)},
		// 80h old, 2 sent: tier 3 due.
		{ID: 3, StoreID: 1, Email: "c@example.com", RecoveryStatus: constants.RecoveryStatusActive, RecoveryEmailsSent: 2, AbandonedAt: now.Add(-80 * time.Hour)},
		// 80h old, all 3 sent: sequence complete.
		{ID: 4, StoreID: 1, Email: "d@example.com", RecoveryStatus: constants.RecoveryStatusActive, RecoveryEmailsSent: 3, AbandonedAt: now.Add(-80 * time.Hour)},
		// No email: skipped.
		{ID: 5, StoreID: 1, RecoveryStatus: constants.RecoveryStatusActive, AbandonedAt: now.Add(-80 * time.Hour)},
	}}
	enqueuer := &enqueuerStub{}
	svc := newCartService(repo, enqueuer)

	result := svc.Sweep(now)
	if result.CartsChecked != 5 {
		t.Fatalf("expected 5 carts checked, got %d", result.CartsChecked)
	}
	if result.AlertsQueued != 2 {
		t.Fatalf("expected 2 alerts queued, got %d", result.AlertsQueued)
	}
	if len(enqueuer.calls) != 2 || enqueuer.calls[0] != 1 || enqueuer.calls[1] != 3 {
		t.Fatalf("expected carts 1 and 3 queued, got %v", enqueuer.calls)
	}
	if enqueuer.seqs[0] != 1 || enqueuer.seqs[1] != 3 {
		t.Fatalf("expected sequences 1 and 3, got %v", enqueuer.seqs)
	}
}

func TestSweepExpiresOldCarts(t *testing.T) {
	now := time.Now()
	repo := &cartRepoStub{active: []models.AbandonedCart{
		{ID: 9, StoreID: 1, Email: "a@example.com", RecoveryStatus: constants.RecoveryStatusActive, AbandonedAt: now.Add(-200 * time.Hour)},
	}}
	enqueuer := &enqueuerStub{}
	svc := newCartService(repo, enqueuer)

	result := svc.Sweep(now)
	if result.Expired != 1 {
		t.Fatalf("expected 1 expiry, got %d", result.Expired)
	}
	if repo.transient[9] != constants.RecoveryStatusExpired {
		t.Fatalf("expected cart 9 expired, got %q", repo.transient[9])
	}
	if len(enqueuer.calls) != 0 {
		t.Fatalf("expired cart must not receive a reminder")
	}
}

func TestSweepIsolatesPerCartFailures(t *testing.T) {
	now := time.Now()
	repo := &cartRepoStub{active: []models.AbandonedCart{
		{ID: 1, StoreID: 1, Email: "a@example.com", RecoveryStatus: constants.RecoveryStatusActive, AbandonedAt: now.Add(-2 * time.Hour)},
		{ID: 2, StoreID: 1, Email: "b@example.com", RecoveryStatus: constants.RecoveryStatusActive, AbandonedAt: now.Add(-2 * time.Hour)},
	}}
	enqueuer := &enqueuerStub{err: errors.New("queue down")}
	svc := newCartService(repo, enqueuer)

	result := svc.Sweep(now)
	if result.CartsChecked != 2 {
		t.Fatalf("a failing cart must not abort the batch, checked %d", result.CartsChecked)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors recorded, got %v", result.Errors)
	}
}

func TestMarkRecovered(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{})
	count, err := svc.MarkRecovered(1, nil, "buyer@example.com")
	if err != nil {
		t.Fatalf("mark recovered returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recovered, got %d", count)
	}
}

func TestMarkRecoveredNoopWithoutContact(t *testing.T) {
	repo := &cartRepoStub{}
	svc := newCartService(repo, &enqueuerStub{})
	count, err := svc.MarkRecovered(1, nil, "   ")
	if err != nil {
		t.Fatalf("mark recovered returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no-op without contact, got %d", count)
	}
}
