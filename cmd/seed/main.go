package main

import (
	"fmt"
	"time"

	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo merchant, store, catalog, coupons, and checkout settings so
// the API is usable right after a fresh migration.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	var existing models.Merchant
	if err := models.DB.Where("email = ?", "demo@storekart.in").First(&existing).Error; err == nil {
		stdLog.Printf("demo merchant already present, nothing to do")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("storekart-demo"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("failed to hash demo password: %v", err)
	}

	merchant := models.Merchant{
		Email:        "demo@storekart.in",
		PasswordHash: string(passwordHash),
		Name:         "Demo Merchant",
		IsActive:     true,
	}
	if err := models.DB.Create(&merchant).Error; err != nil {
		stdLog.Fatalf("failed to create merchant: %v", err)
	}

	store := models.Store{
		MerchantID: merchant.ID,
		Name:       "Chai & Chargers",
		Slug:       "chai-and-chargers",
		Status:     constants.StoreStatusActive,
		Currency:   constants.SiteCurrencyDefault,
	}
	if err := models.DB.Create(&store).Error; err != nil {
		stdLog.Fatalf("failed to create store: %v", err)
	}

	products := []models.Product{
		{
			StoreID:       store.ID,
			Slug:          "masala-chai-gift-box",
			Title:         "Masala Chai Gift Box",
			Description:   "Assam CTC blended with cardamom, ginger, and clove. 250g tin.",
			PriceAmount:   money("499"),
			Images:        models.StringArray{"https://cdn.storekart.in/demo/chai-box.jpg"},
			Status:        constants.ProductStatusPublished,
			TrackQuantity: true,
			StockQuantity: 120,
			SortOrder:     1,
		},
		{
			StoreID:       store.ID,
			Slug:          "gan-charger-65w",
			Title:         "65W GaN Fast Charger",
			Description:   "Dual USB-C wall charger, BIS certified.",
			PriceAmount:   money("1299"),
			Images:        models.StringArray{"https://cdn.storekart.in/demo/gan-65w.jpg"},
			Status:        constants.ProductStatusPublished,
			TrackQuantity: true,
			StockQuantity: 45,
			SortOrder:     2,
			Variants: []models.ProductVariant{
				{Title: "White", PriceAmount: money("1299"), TrackQuantity: true, StockQuantity: 30, IsActive: true},
				{Title: "Black", PriceAmount: money("1349"), TrackQuantity: true, StockQuantity: 15, IsActive: true},
			},
		},
		{
			StoreID:     store.ID,
			Slug:        "braided-usbc-cable",
			Title:       "Braided USB-C Cable 2m",
			Description: "100W PD rated, nylon braided.",
			PriceAmount: money("349"),
			Images:      models.StringArray{"https://cdn.storekart.in/demo/cable.jpg"},
			Status:      constants.ProductStatusPublished,
			SortOrder:   3,
		},
		{
			StoreID:     store.ID,
			Slug:        "steel-tumbler-draft",
			Title:       "Insulated Steel Tumbler",
			Description: "Not yet listed.",
			PriceAmount: money("799"),
			Status:      constants.ProductStatusDraft,
			SortOrder:   4,
		},
	}
	for i := range products {
		if err := models.DB.Create(&products[i]).Error; err != nil {
			stdLog.Fatalf("failed to create product %s: %v", products[i].Slug, err)
		}
	}

	expiry := time.Now().AddDate(0, 6, 0)
	coupons := []models.Coupon{
		{
			StoreID:       store.ID,
			Code:          "WELCOME10",
			DiscountType:  constants.CouponTypePercentage,
			DiscountValue: money("10"),
			MinOrderValue: money("500"),
			UsageLimit:    500,
			ExpiresAt:     &expiry,
			IsActive:      true,
		},
		{
			StoreID:          store.ID,
			Code:             "FLAT100",
			DiscountType:     constants.CouponTypeFixed,
			DiscountValue:    money("100"),
			MinOrderValue:    money("999"),
			PerCustomerLimit: 1,
			ExpiresAt:        &expiry,
			IsActive:         true,
		},
		{
			StoreID:       store.ID,
			Code:          "SHIPFREE",
			DiscountType:  constants.CouponTypeFreeShipping,
			MinOrderValue: money("299"),
			IsActive:      true,
		},
		{
			StoreID:       store.ID,
			Code:          "COMEBACK15",
			DiscountType:  constants.CouponTypePercentage,
			DiscountValue: money("15"),
			IsActive:      true,
		},
	}
	for i := range coupons {
		if err := models.DB.Create(&coupons[i]).Error; err != nil {
			stdLog.Fatalf("failed to create coupon %s: %v", coupons[i].Code, err)
		}
	}

	checkout := models.StoreSetting{
		StoreID: store.ID,
		Key:     constants.StoreSettingKeyCheckout,
		ValueJSON: models.JSON(map[string]interface{}{
			"guest_checkout_enabled":  true,
			"phone_required":          true,
			"free_shipping_threshold": 999,
			"flat_rate_national":      49,
			"cod_enabled":             true,
			"cod_fee":                 25,
			"upi_enabled":             true,
			"razorpay_enabled":        true,
			"shipping_zones": []interface{}{
				map[string]interface{}{"region": "Maharashtra", "rate": 39},
				map[string]interface{}{"region": "Karnataka", "rate": 39},
				map[string]interface{}{"region": "Delhi", "rate": 59},
			},
			"recovery_discount_code": "COMEBACK15",
			"recovery_discount_pct":  15,
		}),
	}
	if err := models.DB.Create(&checkout).Error; err != nil {
		stdLog.Fatalf("failed to create checkout settings: %v", err)
	}

	fmt.Println("seeded demo data:")
	fmt.Printf("  merchant: demo@storekart.in / storekart-demo\n")
	fmt.Printf("  store:    %s (id %d)\n", store.Slug, store.ID)
	fmt.Printf("  products: %d, coupons: %d\n", len(products), len(coupons))
}

func money(value string) models.Money {
	return models.Money{Decimal: decimal.RequireFromString(value)}
}
