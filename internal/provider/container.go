package provider

import (
	"time"

	"github.com/storekart/storekart/internal/cache"
	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/queue"
	"github.com/storekart/storekart/internal/repository"
	"github.com/storekart/storekart/internal/service"
)

// Container wires repositories and services once at startup.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	StoreRepo         repository.StoreRepository
	MerchantRepo      repository.MerchantRepository
	ProductRepo       repository.ProductRepository
	CouponRepo        repository.CouponRepository
	CouponUsageRepo   repository.CouponUsageRepository
	SettingRepo       repository.SettingRepository
	AbandonedCartRepo repository.AbandonedCartRepository

	// Services
	SettingsService      *service.SettingsService
	CheckoutService      *service.CheckoutService
	CouponService        *service.CouponService
	PricingService       *service.PricingService
	EmailService         *service.EmailService
	AbandonedCartService *service.AbandonedCartService
	RecoveryService      *service.RecoveryService
	MerchantAuthService  *service.MerchantAuthService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StoreRepo = repository.NewStoreRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AbandonedCartRepo = repository.NewAbandonedCartRepository(db)
}

func (c *Container) initServices() {
	c.SettingsService = service.NewSettingsService(c.SettingRepo)
	c.CheckoutService = service.NewCheckoutService(c.StoreRepo, c.ProductRepo)
	c.CouponService = service.NewCouponService(models.DB, c.CouponRepo, c.CouponUsageRepo)
	c.PricingService = service.NewPricingService()
	c.EmailService = service.NewEmailService(&c.Config.Email)

	policy := service.RecoveryPolicy{
		TierHours:  c.Config.Recovery.TierHours,
		MaxAge:     time.Duration(c.Config.Recovery.MaxAgeHours) * time.Hour,
		BatchLimit: c.Config.Recovery.BatchLimit,
	}
	c.AbandonedCartService = service.NewAbandonedCartService(
		c.StoreRepo,
		c.AbandonedCartRepo,
		c.CheckoutService,
		c.QueueClient,
		policy,
	)
	c.RecoveryService = service.NewRecoveryService(
		c.StoreRepo,
		c.AbandonedCartRepo,
		c.SettingsService,
		c.EmailService,
	)
	c.MerchantAuthService = service.NewMerchantAuthService(c.MerchantRepo, &c.Config.JWT)
}
