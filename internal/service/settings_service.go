package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storekart/storekart/internal/cache"
	"github.com/storekart/storekart/internal/constants"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"
)

const settingsCacheTTL = 60 * time.Second

// ShippingZone is a per-region flat-rate override of the national rate.
type ShippingZone struct {
	Region   string       `json:"region"`
	FlatRate models.Money `json:"flat_rate"`
}

// StoreSettings is a store's fully resolved checkout configuration.
// Every default is applied here, once; calculation code never falls back.
type StoreSettings struct {
	GuestCheckoutEnabled  bool           `json:"guest_checkout_enabled"`
	PhoneRequired         bool           `json:"phone_required"`
	FreeShippingThreshold models.Money   `json:"free_shipping_threshold"`
	FlatRateNational      models.Money   `json:"flat_rate_national"`
	CODEnabled            bool           `json:"cod_enabled"`
	CODFee                models.Money   `json:"cod_fee"`
	Zones                 []ShippingZone `json:"zones,omitempty"`
	RazorpayEnabled       bool           `json:"razorpay_enabled"`
	StripeEnabled         bool           `json:"stripe_enabled"`
	UPIEnabled            bool           `json:"upi_enabled"`
	RecoveryDiscountCode  string         `json:"recovery_discount_code,omitempty"`
	RecoveryDiscountPct   int            `json:"recovery_discount_pct,omitempty"`
}

// ZoneRate returns the flat rate for a destination region, falling back to
// the national rate when no zone matches. Region matching is
// case-insensitive on the trimmed name.
func (s StoreSettings) ZoneRate(region string) models.Money {
	trimmed := strings.TrimSpace(region)
	if trimmed == "" {
		return s.FlatRateNational
	}
	for _, zone := range s.Zones {
		if strings.EqualFold(strings.TrimSpace(zone.Region), trimmed) {
			return zone.FlatRate
		}
	}
	return s.FlatRateNational
}

func defaultStoreSettings() StoreSettings {
	return StoreSettings{
		GuestCheckoutEnabled:  true,
		PhoneRequired:         false,
		FreeShippingThreshold: models.NewMoneyFromInt(999),
		FlatRateNational:      models.NewMoneyFromInt(49),
		CODEnabled:            true,
		CODFee:                models.NewMoneyFromInt(20),
		RazorpayEnabled:       false,
		StripeEnabled:         false,
		UPIEnabled:            true,
	}
}

// SettingsService resolves per-store checkout settings.
type SettingsService struct {
	settingRepo repository.SettingRepository
}

// NewSettingsService creates a settings service.
func NewSettingsService(settingRepo repository.SettingRepository) *SettingsService {
	return &SettingsService{settingRepo: settingRepo}
}

// ResolveCheckout loads a store's checkout settings with defaults merged.
// The resolved struct is cached briefly; stores tune these rarely.
func (s *SettingsService) ResolveCheckout(ctx context.Context, storeID uint) (StoreSettings, error) {
	cacheKey := fmt.Sprintf("store:%d:settings:%s", storeID, constants.StoreSettingKeyCheckout)

	var cached StoreSettings
	hit, err := cache.GetJSON(ctx, cacheKey, &cached)
	if err != nil {
		logger.Warnw("settings_cache_read_failed", "store_id", storeID, "error", err)
	} else if hit {
		return cached, nil
	}

	resolved := defaultStoreSettings()

	setting, err := s.settingRepo.GetByStoreAndKey(storeID, constants.StoreSettingKeyCheckout)
	if err != nil {
		return StoreSettings{}, err
	}
	if setting != nil {
		applyCheckoutOverrides(&resolved, setting.ValueJSON)
	}

	if err := cache.SetJSON(ctx, cacheKey, resolved, settingsCacheTTL); err != nil {
		logger.Warnw("settings_cache_write_failed", "store_id", storeID, "error", err)
	}
	return resolved, nil
}

// SaveCheckout persists a store's raw checkout blob and drops the cache.
func (s *SettingsService) SaveCheckout(ctx context.Context, storeID uint, value models.JSON) error {
	if _, err := s.settingRepo.Upsert(storeID, constants.StoreSettingKeyCheckout, value); err != nil {
		return err
	}
	cacheKey := fmt.Sprintf("store:%d:settings:%s", storeID, constants.StoreSettingKeyCheckout)
	if err := cache.Del(ctx, cacheKey); err != nil {
		logger.Warnw("settings_cache_invalidate_failed", "store_id", storeID, "error", err)
	}
	return nil
}

// applyCheckoutOverrides merges a stored blob over the defaults. Stored
// values are loose JSON (hand-edited blobs from older dashboards exist), so
// each field is read tolerantly and ignored when malformed.
func applyCheckoutOverrides(settings *StoreSettings, raw models.JSON) {
	if raw == nil {
		return
	}
	if v, ok := parseSettingBool(raw["guest_checkout_enabled"]); ok {
		settings.GuestCheckoutEnabled = v
	}
	if v, ok := parseSettingBool(raw["phone_required"]); ok {
		settings.PhoneRequired = v
	}
	if v, ok := parseSettingMoney(raw["free_shipping_threshold"]); ok {
		settings.FreeShippingThreshold = v
	}
	if v, ok := parseSettingMoney(raw["flat_rate_national"]); ok {
		settings.FlatRateNational = v
	}
	if v, ok := parseSettingBool(raw["cod_enabled"]); ok {
		settings.CODEnabled = v
	}
	if v, ok := parseSettingMoney(raw["cod_fee"]); ok {
		settings.CODFee = v
	}
	if v, ok := parseSettingBool(raw["razorpay_enabled"]); ok {
		settings.RazorpayEnabled = v
	}
	if v, ok := parseSettingBool(raw["stripe_enabled"]); ok {
		settings.StripeEnabled = v
	}
	if v, ok := parseSettingBool(raw["upi_enabled"]); ok {
		settings.UPIEnabled = v
	}
	if v, ok := raw["recovery_discount_code"].(string); ok {
		settings.RecoveryDiscountCode = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok := parseSettingInt(raw["recovery_discount_pct"]); ok && v > 0 && v <= 100 {
		settings.RecoveryDiscountPct = v
	}
	settings.Zones = parseSettingZones(raw["zones"])
}

func parseSettingBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	case float64:
		return val != 0, true
	}
	return false, false
}

func parseSettingInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return int(d.IntPart()), true
	}
	return 0, false
}

func parseSettingMoney(v interface{}) (models.Money, bool) {
	switch val := v.(type) {
	case float64:
		return models.NewMoneyFromDecimal(decimal.NewFromFloat(val)), true
	case int:
		return models.NewMoneyFromInt(int64(val)), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return models.Money{}, false
		}
		return models.NewMoneyFromDecimal(d), true
	}
	return models.Money{}, false
}

func parseSettingZones(v interface{}) []ShippingZone {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	zones := make([]ShippingZone, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		region, _ := obj["region"].(string)
		region = strings.TrimSpace(region)
		rate, rateOK := parseSettingMoney(obj["flat_rate"])
		if region == "" || !rateOK {
			continue
		}
		zones = append(zones, ShippingZone{Region: region, FlatRate: rate})
	}
	if len(zones) == 0 {
		return nil
	}
	return zones
}
