package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/queue"
	"github.com/edukart-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db failed: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.CatalogItem{},
		&models.FlashSale{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.CheckoutSession{},
		&models.Order{},
		&models.SubOrder{},
		&models.Enrollment{},
		&models.GuidanceSlot{},
		&models.OfflineBatch{},
	)
	if err != nil {
		t.Fatalf("migrate test db failed: %v", err)
	}
	return db
}

func testMoney(t *testing.T, value string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", value, err)
	}
	return models.NewMoneyFromDecimal(d)
}

type serviceTestEnv struct {
	db              *gorm.DB
	catalogRepo     repository.CatalogRepository
	flashSaleRepo   repository.FlashSaleRepository
	couponRepo      repository.CouponRepository
	couponUsageRepo repository.CouponUsageRepository
	sessionRepo     repository.CheckoutSessionRepository
	orderRepo       repository.OrderRepository
	enrollRepo      repository.EnrollmentRepository

	catalogSvc *CatalogService
	couponSvc  *CouponService
	pricing    *PricingService
	settlement *SettlementService
}

const testProviderSecret = "test_provider_secret"

func newServiceTestEnv(t *testing.T, name string) *serviceTestEnv {
	t.Helper()
	db := openServiceTestDB(t, name)

	env := &serviceTestEnv{
		db:              db,
		catalogRepo:     repository.NewCatalogRepository(db),
		flashSaleRepo:   repository.NewFlashSaleRepository(db),
		couponRepo:      repository.NewCouponRepository(db),
		couponUsageRepo: repository.NewCouponUsageRepository(db),
		sessionRepo:     repository.NewCheckoutSessionRepository(db),
		orderRepo:       repository.NewOrderRepository(db),
		enrollRepo:      repository.NewEnrollmentRepository(db),
	}
	env.catalogSvc = NewCatalogService(env.catalogRepo, env.flashSaleRepo, time.Minute)
	env.couponSvc = NewCouponService(env.couponRepo, env.orderRepo)
	env.pricing = NewPricingService(env.catalogSvc, env.couponSvc)

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("build queue client failed: %v", err)
	}
	env.settlement = NewSettlementService(
		db,
		env.pricing,
		env.catalogSvc,
		env.sessionRepo,
		env.orderRepo,
		env.couponRepo,
		env.couponUsageRepo,
		env.enrollRepo,
		queueClient,
		testProviderSecret,
	)
	return env
}

func (env *serviceTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: email, IsActive: true}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *serviceTestEnv) createItem(t *testing.T, productType string, refID uint, title, price string) *models.CatalogItem {
	t.Helper()
	item := &models.CatalogItem{
		ProductType: productType,
		RefID:       refID,
		Title:       title,
		BasePrice:   testMoney(t, price),
		IsActive:    true,
	}
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("create catalog item failed: %v", err)
	}
	return item
}

func (env *serviceTestEnv) createFreeItem(t *testing.T, productType string, refID uint, title string) *models.CatalogItem {
	t.Helper()
	item := &models.CatalogItem{
		ProductType: productType,
		RefID:       refID,
		Title:       title,
		BasePrice:   testMoney(t, "0.00"),
		IsFree:      true,
		IsActive:    true,
	}
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("create free catalog item failed: %v", err)
	}
	return item
}
