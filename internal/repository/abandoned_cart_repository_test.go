package repository

import (
	"testing"
	"time"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAbandonedCartRepositoryTest(t *testing.T) (*GormAbandonedCartRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.AbandonedCart{}); err != nil {
		t.Fatalf("migrate abandoned cart failed: %v", err)
	}
	return NewAbandonedCartRepository(db), db
}

func createTestCart(t *testing.T, repo *GormAbandonedCartRepository, storeID uint, customerID *uint, email, token string, sent int) *models.AbandonedCart {
	t.Helper()
	cart := &models.AbandonedCart{
		StoreID:    storeID,
		CustomerID: customerID,
		Email:      email,
		Items: models.CartItemSnapshots{
			{ProductID: 1, Title: "Tea", UnitPrice: models.NewMoneyFromInt(499), Quantity: 1},
		},
		Subtotal:           models.NewMoneyFromInt(499),
		ItemCount:          1,
		RecoveryStatus:     constants.RecoveryStatusActive,
		RecoveryEmailsSent: sent,
		RecoveryToken:      token,
		AbandonedAt:        time.Now().Add(-2 * time.Hour),
	}
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	return cart
}

func cartStatus(t *testing.T, repo *GormAbandonedCartRepository, id uint) string {
	t.Helper()
	cart, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if cart == nil {
		t.Fatalf("cart %d missing", id)
	}
	return cart.RecoveryStatus
}

func TestRecoverActiveByContactCustomerIDOnlyScopesToThatCustomer(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	five := uint(5)
	seven := uint(7)
	mine := createTestCart(t, repo, 11, &five, "", "tok-recover-a", 0)
	other := createTestCart(t, repo, 11, &seven, "", "tok-recover-b", 0)

	affected, err := repo.RecoverActiveByContact(11, &five, "")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("recover affected want 1 got %d", affected)
	}
	if got := cartStatus(t, repo, mine.ID); got != constants.RecoveryStatusRecovered {
		t.Fatalf("customer 5 cart want recovered got %s", got)
	}
	if got := cartStatus(t, repo, other.ID); got != constants.RecoveryStatusActive {
		t.Fatalf("customer 7 cart must stay active, got %s", got)
	}
}

func TestRecoverActiveByContactEmptyContactMatchesNothing(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	guest := uint(31)
	createTestCart(t, repo, 12, &guest, "", "tok-recover-c", 0)

	affected, err := repo.RecoverActiveByContact(12, nil, "")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("empty contact must match nothing, got %d rows", affected)
	}
}

func TestRecoverActiveByContactMatchesCustomerOrEmail(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	forty := uint(40)
	byCustomer := createTestCart(t, repo, 13, &forty, "", "tok-recover-d", 1)
	byEmail := createTestCart(t, repo, 13, nil, "shopper@example.com", "tok-recover-e", 0)
	unrelated := createTestCart(t, repo, 13, nil, "someone-else@example.com", "tok-recover-f", 0)

	affected, err := repo.RecoverActiveByContact(13, &forty, "shopper@example.com")
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("recover affected want 2 got %d", affected)
	}
	if got := cartStatus(t, repo, byCustomer.ID); got != constants.RecoveryStatusRecovered {
		t.Fatalf("customer cart want recovered got %s", got)
	}
	if got := cartStatus(t, repo, byEmail.ID); got != constants.RecoveryStatusRecovered {
		t.Fatalf("email cart want recovered got %s", got)
	}
	if got := cartStatus(t, repo, unrelated.ID); got != constants.RecoveryStatusActive {
		t.Fatalf("unrelated cart must stay active, got %s", got)
	}
}

func TestTransitionStatusGuardedOnPriorStatus(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	cart := createTestCart(t, repo, 14, nil, "expire@example.com", "tok-transition-a", 2)

	ok, err := repo.TransitionStatus(cart.ID, constants.RecoveryStatusActive, constants.RecoveryStatusExpired)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if !ok {
		t.Fatalf("first transition must win")
	}

	// The losing side of the race sees rows-affected zero, not an error.
	ok, err = repo.TransitionStatus(cart.ID, constants.RecoveryStatusActive, constants.RecoveryStatusRecovered)
	if err != nil {
		t.Fatalf("second transition errored: %v", err)
	}
	if ok {
		t.Fatalf("transition from a stale prior status must not win")
	}
	if got := cartStatus(t, repo, cart.ID); got != constants.RecoveryStatusExpired {
		t.Fatalf("cart want expired got %s", got)
	}
}

func TestMarkReminderSentGuardedOnCounterAndStatus(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	cart := createTestCart(t, repo, 15, nil, "remind@example.com", "tok-reminder-a", 1)

	ok, err := repo.MarkReminderSent(cart.ID, 1, time.Now())
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if !ok {
		t.Fatalf("advance with matching counter must win")
	}

	// A duplicate worker still holding the pre-send counter loses.
	ok, err = repo.MarkReminderSent(cart.ID, 1, time.Now())
	if err != nil {
		t.Fatalf("duplicate mark errored: %v", err)
	}
	if ok {
		t.Fatalf("stale counter must not advance")
	}

	updated, err := repo.GetByID(cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if updated.RecoveryEmailsSent != 2 {
		t.Fatalf("counter want 2 got %d", updated.RecoveryEmailsSent)
	}
	if updated.LastReminderAt == nil {
		t.Fatalf("last reminder time must be set")
	}

	if _, err := repo.TransitionStatus(cart.ID, constants.RecoveryStatusActive, constants.RecoveryStatusRecovered); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	ok, err = repo.MarkReminderSent(cart.ID, 2, time.Now())
	if err != nil {
		t.Fatalf("mark on recovered cart errored: %v", err)
	}
	if ok {
		t.Fatalf("a terminal cart must not advance its counter")
	}
}

func TestMergeActivePreservesReminderCounter(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	cart := createTestCart(t, repo, 16, nil, "merge@example.com", "tok-merge-a", 2)

	newItems := models.CartItemSnapshots{
		{ProductID: 2, Title: "Charger", UnitPrice: models.NewMoneyFromInt(1299), Quantity: 2},
	}
	ok, err := repo.MergeActive(cart.ID, newItems, models.NewMoneyFromInt(2598), 2, time.Now())
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !ok {
		t.Fatalf("merge on an active cart must win")
	}

	merged, err := repo.GetByID(cart.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if merged.ItemCount != 2 {
		t.Fatalf("item count want 2 got %d", merged.ItemCount)
	}
	if !merged.Subtotal.Equal(models.NewMoneyFromInt(2598).Decimal) {
		t.Fatalf("subtotal want 2598 got %s", merged.Subtotal)
	}
	if merged.RecoveryEmailsSent != 2 {
		t.Fatalf("merge must not touch the reminder counter, got %d", merged.RecoveryEmailsSent)
	}

	if _, err := repo.TransitionStatus(cart.ID, constants.RecoveryStatusActive, constants.RecoveryStatusExpired); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	ok, err = repo.MergeActive(cart.ID, newItems, models.NewMoneyFromInt(2598), 2, time.Now())
	if err != nil {
		t.Fatalf("merge on expired cart errored: %v", err)
	}
	if ok {
		t.Fatalf("merge on a terminal cart must not win")
	}
}

func TestListActiveAbandonedBeforeBoundsTheBatch(t *testing.T) {
	repo, _ := setupAbandonedCartRepositoryTest(t)
	for i := 0; i < 4; i++ {
		createTestCart(t, repo, 17, nil, "batch@example.com", "tok-batch-"+string(rune('a'+i)), 0)
	}

	carts, err := repo.ListActiveAbandonedBefore(time.Now(), 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(carts) > 3 {
		t.Fatalf("batch limit 3 exceeded: got %d rows", len(carts))
	}
}
