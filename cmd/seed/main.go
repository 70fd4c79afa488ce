package main

import (
	"time"

	"github.com/edukart-next/internal/config"
	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

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

	seedUsers(stdLog.Printf)
	seedGuidanceSlots(stdLog.Printf)
	seedOfflineBatches(stdLog.Printf)
	seedCatalog(stdLog.Printf)
	seedFlashSales(stdLog.Printf)
	seedCoupons(stdLog.Printf)

	stdLog.Printf("seed finished")
}

type printf func(format string, args ...interface{})

func money(value string) models.Money {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return models.NewMoneyFromDecimal(d)
}

func moneyPtr(value string) *models.Money {
	m := money(value)
	return &m
}

func seedUsers(logf printf) {
	users := []models.User{
		{Email: "asha@example.com", Name: "Asha Verma"},
		{Email: "rohan@example.com", Name: "Rohan Iyer"},
	}
	for _, user := range users {
		record := user
		record.IsActive = true
		var existing models.User
		err := models.DB.Where("email = ?", record.Email).First(&existing).Error
		if err == nil {
			logf("user already exists: %s", record.Email)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up user %s: %v", record.Email, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create user %s: %v", record.Email, err)
			continue
		}
		logf("created user: %s", record.Email)
	}
}

func seedGuidanceSlots(logf printf) {
	base := time.Now().AddDate(0, 0, 7).Truncate(time.Hour)
	slots := []models.GuidanceSlot{
		{ID: 1, MentorName: "Dr. Kavita Rao", StartsAt: base},
		{ID: 2, MentorName: "Dr. Kavita Rao", StartsAt: base.Add(2 * time.Hour)},
		{ID: 3, MentorName: "Prof. Arjun Mehta", StartsAt: base.Add(24 * time.Hour)},
	}
	for _, slot := range slots {
		record := slot
		var existing models.GuidanceSlot
		err := models.DB.Where("id = ?", record.ID).First(&existing).Error
		if err == nil {
			logf("guidance slot already exists: %d", record.ID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up guidance slot %d: %v", record.ID, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create guidance slot %d: %v", record.ID, err)
			continue
		}
		logf("created guidance slot: %d", record.ID)
	}
}

func seedOfflineBatches(logf printf) {
	batches := []models.OfflineBatch{
		{ID: 1, Venue: "Bengaluru HSR Centre", StartsAt: time.Now().AddDate(0, 1, 0), SeatsTotal: 30},
		{ID: 2, Venue: "Pune FC Road Centre", StartsAt: time.Now().AddDate(0, 1, 15), SeatsTotal: 25},
	}
	for _, batch := range batches {
		record := batch
		var existing models.OfflineBatch
		err := models.DB.Where("id = ?", record.ID).First(&existing).Error
		if err == nil {
			logf("offline batch already exists: %d", record.ID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up offline batch %d: %v", record.ID, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create offline batch %d: %v", record.ID, err)
			continue
		}
		logf("created offline batch: %d", record.ID)
	}
}

func seedCatalog(logf printf) {
	items := []models.CatalogItem{
		{ProductType: constants.ProductTypeEbook, RefID: 1, Title: "NEET Physics Formula Handbook", BasePrice: money("299.00")},
		{ProductType: constants.ProductTypeEbook, RefID: 2, Title: "Organic Chemistry Crash Notes", BasePrice: money("0.00"), IsFree: true},
		{ProductType: constants.ProductTypeWebinar, RefID: 1, Title: "Cracking JEE in 90 Days", BasePrice: money("499.00"), SalePrice: moneyPtr("399.00")},
		{ProductType: constants.ProductTypeGuidance, RefID: 1, Title: "1:1 Career Guidance with Dr. Kavita Rao", BasePrice: money("1500.00")},
		{ProductType: constants.ProductTypeGuidance, RefID: 2, Title: "1:1 Career Guidance with Dr. Kavita Rao", BasePrice: money("1500.00")},
		{ProductType: constants.ProductTypeGuidance, RefID: 3, Title: "1:1 Study Plan Review with Prof. Arjun Mehta", BasePrice: money("1200.00")},
		{ProductType: constants.ProductTypeMentorship, RefID: 1, Title: "6-Month JEE Mentorship Program", BasePrice: money("7999.00")},
		{ProductType: constants.ProductTypeCourse, RefID: 1, Title: "Complete Class 12 Mathematics", BasePrice: money("3999.00"), SalePrice: moneyPtr("2999.00")},
		{ProductType: constants.ProductTypeCourse, RefID: 2, Title: "Physics Problem Solving Masterclass", BasePrice: money("2499.00")},
		{ProductType: constants.ProductTypeBundle, RefID: 1, Title: "JEE Complete Bundle (PCM)", BasePrice: money("9999.00"), SalePrice: moneyPtr("7999.00")},
		{ProductType: constants.ProductTypeOfflineBatch, RefID: 1, Title: "Bengaluru Weekend Crash Batch", BasePrice: money("14999.00")},
		{ProductType: constants.ProductTypeOfflineBatch, RefID: 2, Title: "Pune Weekend Crash Batch", BasePrice: money("13999.00")},
	}
	for _, item := range items {
		record := item
		record.IsActive = true
		var existing models.CatalogItem
		err := models.DB.Where("product_type = ? AND ref_id = ?", record.ProductType, record.RefID).First(&existing).Error
		if err == nil {
			logf("catalog item already exists: %s/%d", record.ProductType, record.RefID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up catalog item %s/%d: %v", record.ProductType, record.RefID, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create catalog item %s/%d: %v", record.ProductType, record.RefID, err)
			continue
		}
		logf("created catalog item: %s/%d (%s)", record.ProductType, record.RefID, record.Title)
	}
}

func seedFlashSales(logf printf) {
	sales := []models.FlashSale{
		{
			Name:          "Monsoon Maths Sale",
			ProductType:   constants.ProductTypeCourse,
			ItemID:        1,
			DiscountPrice: money("1999.00"),
			StartsAt:      time.Now().Add(-time.Hour),
			EndsAt:        time.Now().AddDate(0, 0, 7),
			IsActive:      true,
		},
	}
	for _, sale := range sales {
		record := sale
		var existing models.FlashSale
		err := models.DB.Where("name = ?", record.Name).First(&existing).Error
		if err == nil {
			logf("flash sale already exists: %s", record.Name)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up flash sale %s: %v", record.Name, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create flash sale %s: %v", record.Name, err)
			continue
		}
		logf("created flash sale: %s", record.Name)
	}
}

func seedCoupons(logf printf) {
	until := time.Now().AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{
			Code:          "SAVE200",
			DiscountType:  constants.CouponTypeFixed,
			DiscountValue: money("200.00"),
			MinAmount:     money("500.00"),
			ApplicableTo:  constants.CouponApplicableAll,
			TargetUser:    constants.CouponTargetAll,
			ValidUntil:    &until,
		},
		{
			Code:          "WELCOME10",
			DiscountType:  constants.CouponTypePercent,
			DiscountValue: money("10.00"),
			MaxDiscount:   money("500.00"),
			ApplicableTo:  constants.CouponApplicableAll,
			TargetUser:    constants.CouponTargetNewUser,
			UsageLimit:    1000,
			ValidUntil:    &until,
		},
		{
			Code:          "EBOOK50",
			DiscountType:  constants.CouponTypeFixed,
			DiscountValue: money("50.00"),
			MinAmount:     money("100.00"),
			ApplicableTo:  constants.ProductTypeEbook,
			TargetUser:    constants.CouponTargetAll,
			ValidUntil:    &until,
		},
		{
			Code:          "VIP25",
			DiscountType:  constants.CouponTypePercent,
			DiscountValue: money("25.00"),
			MaxDiscount:   money("2500.00"),
			ApplicableTo:  constants.CouponApplicableAll,
			TargetUser:    constants.CouponTargetSpecificUser,
			TargetUserIDs: models.UintList{1},
			UsageLimit:    50,
			ValidUntil:    &until,
		},
	}
	for _, coupon := range coupons {
		record := coupon
		record.IsActive = true
		var existing models.Coupon
		err := models.DB.Where("code = ?", record.Code).First(&existing).Error
		if err == nil {
			logf("coupon already exists: %s", record.Code)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logf("failed to look up coupon %s: %v", record.Code, err)
			continue
		}
		if err := models.DB.Create(&record).Error; err != nil {
			logf("failed to create coupon %s: %v", record.Code, err)
			continue
		}
		logf("created coupon: %s", record.Code)
	}
}
