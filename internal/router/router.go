package router

import (
	"fmt"
	"strings"

	"github.com/edukart-next/internal/cache"
	"github.com/edukart-next/internal/config"
	"github.com/edukart-next/internal/constants"
	publichandlers "github.com/edukart-next/internal/http/handlers/public"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all API routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CheckoutRateLimit.BlockSeconds,
		MessageKey:    "error.checkout_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/catalog", publicHandler.ListCatalog)
		}

		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.POST("/checkout/quote", publicHandler.CheckoutQuote)
			user.POST("/checkout/init", RateLimitMiddleware(redisClient, checkoutRule, KeyByUserID), publicHandler.CheckoutInit)
			user.POST("/checkout/complete", RateLimitMiddleware(redisClient, checkoutRule, KeyByUserID), publicHandler.CheckoutComplete)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
		}
	}

	return r
}
