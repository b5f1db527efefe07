package router

import (
	"github.com/storekart/storekart/internal/cache"
	"github.com/storekart/storekart/internal/config"
	cronapi "github.com/storekart/storekart/internal/http/handlers/cron"
	"github.com/storekart/storekart/internal/http/handlers/merchant"
	"github.com/storekart/storekart/internal/http/handlers/public"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/provider"

	"github.com/gin-gonic/gin"
)

// Setup builds the HTTP engine and registers all routes.
func Setup(cfg *config.Config, container *provider.Container) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	publicHandler := public.NewHandler(container)
	merchantHandler := merchant.NewHandler(container)
	cronHandler := cronapi.NewHandler(container)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		cart := api.Group("/cart")
		{
			cart.POST("/validate", publicHandler.ValidateCart)
			cart.POST("/check-inventory", publicHandler.CheckInventory)
			cart.POST("/save", publicHandler.SaveCart)
			cart.GET("/recover/:token", publicHandler.RecoverCart)
		}

		couponLimit := RateLimitMiddleware(cache.Client(), RateLimitRule{
			Prefix:        "rl:coupon",
			WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
			MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
			Message:       "too many coupon attempts, try again later",
		}, KeyByIPAndJSONField("coupon_code"))
		api.POST("/coupons/apply", couponLimit, publicHandler.ApplyCoupon)

		loginLimit := RateLimitMiddleware(cache.Client(), RateLimitRule{
			Prefix:        "rl:login",
			WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
			MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
			Message:       "too many login attempts, try again later",
		}, KeyByIPAndJSONField("email"))
		api.POST("/merchant/login", loginLimit, merchantHandler.Login)

		authed := api.Group("/merchant")
		authed.Use(MerchantAuthMiddleware(container.MerchantAuthService))
		{
			authed.GET("/abandoned-carts", merchantHandler.ListAbandonedCarts)
			authed.POST("/abandoned-carts/send-recovery", merchantHandler.SendRecovery)
		}

		cron := api.Group("/cron")
		cron.Use(CronSecretMiddleware(cfg.Cron.Secret))
		{
			cron.GET("/process-abandoned-carts", cronHandler.ProcessAbandonedCarts)
			cron.POST("/process-abandoned-carts", cronHandler.ProcessAbandonedCarts)
		}
	}

	return r
}
