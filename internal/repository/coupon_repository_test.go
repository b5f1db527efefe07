package repository

import (
	"testing"

	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCouponRepositoryTest(t *testing.T) (*GormCouponRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		t.Fatalf("migrate coupon tables failed: %v", err)
	}
	return NewCouponRepository(db), db
}

func createTestCoupon(t *testing.T, repo *GormCouponRepository, storeID uint, code string, usageLimit, usageCount int) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		StoreID:       storeID,
		Code:          code,
		DiscountType:  constants.CouponTypePercentage,
		DiscountValue: models.NewMoneyFromInt(10),
		UsageLimit:    usageLimit,
		UsageCount:    usageCount,
		IsActive:      true,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func TestRedeemUsageStopsAtLimit(t *testing.T) {
	repo, _ := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, repo, 21, "LIMIT2", 2, 0)

	for i := 1; i <= 2; i++ {
		ok, err := repo.RedeemUsage(coupon.ID)
		if err != nil {
			t.Fatalf("redeem %d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("redeem %d within the limit must win", i)
		}
	}

	// The oversell attempt loses in-query, no read-then-write window.
	ok, err := repo.RedeemUsage(coupon.ID)
	if err != nil {
		t.Fatalf("redeem past limit errored: %v", err)
	}
	if ok {
		t.Fatalf("redeem past the limit must not win")
	}

	current, err := repo.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("get coupon failed: %v", err)
	}
	if current.UsageCount != 2 {
		t.Fatalf("usage count want 2 got %d", current.UsageCount)
	}
}

func TestRedeemUsageUnlimitedAlwaysWins(t *testing.T) {
	repo, _ := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, repo, 22, "NOLIMIT", 0, 5)

	ok, err := repo.RedeemUsage(coupon.ID)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if !ok {
		t.Fatalf("an unlimited coupon must always redeem")
	}
	current, err := repo.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("get coupon failed: %v", err)
	}
	if current.UsageCount != 6 {
		t.Fatalf("usage count want 6 got %d", current.UsageCount)
	}
}

func TestGetByCodeNormalizesLookup(t *testing.T) {
	repo, _ := setupCouponRepositoryTest(t)
	created := createTestCoupon(t, repo, 23, "WELCOME23", 0, 0)

	coupon, err := repo.GetByCode(23, "  welcome23  ")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if coupon == nil || coupon.ID != created.ID {
		t.Fatalf("lowercase padded lookup must resolve the coupon")
	}

	missing, err := repo.GetByCode(23, "NOSUCH")
	if err != nil {
		t.Fatalf("get missing code errored: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing code must return nil, got %+v", missing)
	}

	foreign, err := repo.GetByCode(24, "WELCOME23")
	if err != nil {
		t.Fatalf("get foreign store errored: %v", err)
	}
	if foreign != nil {
		t.Fatalf("another store's code must not resolve")
	}
}

func TestCountByCustomerScopesToCouponAndEmail(t *testing.T) {
	couponRepo, db := setupCouponRepositoryTest(t)
	coupon := createTestCoupon(t, couponRepo, 25, "PERUSER25", 0, 0)
	other := createTestCoupon(t, couponRepo, 25, "OTHER25", 0, 0)

	usageRepo := NewCouponUsageRepository(db)
	usages := []models.CouponUsage{
		{CouponID: coupon.ID, StoreID: 25, CustomerEmail: "repeat@example.com", OrderNo: "SK-1001"},
		{CouponID: coupon.ID, StoreID: 25, CustomerEmail: "repeat@example.com", OrderNo: "SK-1002"},
		{CouponID: coupon.ID, StoreID: 25, CustomerEmail: "once@example.com", OrderNo: "SK-1003"},
		{CouponID: other.ID, StoreID: 25, CustomerEmail: "repeat@example.com", OrderNo: "SK-1004"},
	}
	for i := range usages {
		if err := usageRepo.Create(&usages[i]); err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}

	count, err := usageRepo.CountByCustomer(coupon.ID, "repeat@example.com")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count want 2 got %d", count)
	}
}
