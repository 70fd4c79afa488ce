package provider

import (
	"time"

	"github.com/edukart-next/internal/cache"
	"github.com/edukart-next/internal/config"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/payment/razorpay"
	"github.com/edukart-next/internal/queue"
	"github.com/edukart-next/internal/repository"
	"github.com/edukart-next/internal/service"
)

// Container is the dependency injection container.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	CatalogRepo     repository.CatalogRepository
	FlashSaleRepo   repository.FlashSaleRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	SessionRepo     repository.CheckoutSessionRepository
	OrderRepo       repository.OrderRepository
	EnrollRepo      repository.EnrollmentRepository

	// Services
	CatalogService    *service.CatalogService
	CouponService     *service.CouponService
	PricingService    *service.PricingService
	SettlementService *service.SettlementService
	CheckoutService   *service.CheckoutService
}

// NewContainer wires everything together.
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
	if queueClient == nil {
		queueClient, _ = queue.NewClient(nil)
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
	c.UserRepo = repository.NewUserRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
	c.FlashSaleRepo = repository.NewFlashSaleRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.SessionRepo = repository.NewCheckoutSessionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.EnrollRepo = repository.NewEnrollmentRepository(db)
}

func (c *Container) initServices() {
	priceCacheTTL := time.Duration(c.Config.Checkout.PriceCacheTTLSeconds) * time.Second
	c.CatalogService = service.NewCatalogService(c.CatalogRepo, c.FlashSaleRepo, priceCacheTTL)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.OrderRepo)
	c.PricingService = service.NewPricingService(c.CatalogService, c.CouponService)

	c.SettlementService = service.NewSettlementService(
		models.DB,
		c.PricingService,
		c.CatalogService,
		c.SessionRepo,
		c.OrderRepo,
		c.CouponRepo,
		c.CouponUsageRepo,
		c.EnrollRepo,
		c.QueueClient,
		c.Config.Payment.Razorpay.KeySecret,
	)

	gateway := service.NewRazorpayGateway(&razorpay.Config{
		KeyID:     c.Config.Payment.Razorpay.KeyID,
		KeySecret: c.Config.Payment.Razorpay.KeySecret,
		BaseURL:   c.Config.Payment.Razorpay.BaseURL,
		TimeoutMS: c.Config.Payment.Razorpay.TimeoutMS,
	})
	c.CheckoutService = service.NewCheckoutService(
		c.PricingService,
		c.SettlementService,
		c.SessionRepo,
		gateway,
		c.QueueClient,
		c.Config.Payment.Razorpay.Currency,
		time.Duration(c.Config.Checkout.SessionExpireMinutes)*time.Minute,
	)
}
