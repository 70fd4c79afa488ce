package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestValidateCouponRuleOrder(t *testing.T) {
	env := newServiceTestEnv(t, "coupon_rules")
	now := time.Now()
	subtotal := mustMoney("1000.00")

	inactive := &models.Coupon{Code: "X", IsActive: false}
	if err := env.couponSvc.Validate(inactive, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("inactive coupon want ErrCouponInactive got %v", err)
	}

	past := now.Add(-time.Hour)
	expired := &models.Coupon{Code: "X", IsActive: true, ValidUntil: &past}
	if err := env.couponSvc.Validate(expired, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("expired coupon want ErrCouponInactive got %v", err)
	}

	belowMin := &models.Coupon{Code: "X", IsActive: true, MinAmount: mustMoney("2000.00")}
	if err := env.couponSvc.Validate(belowMin, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponBelowMinimum) {
		t.Fatalf("below minimum want ErrCouponBelowMinimum got %v", err)
	}

	limited := &models.Coupon{Code: "X", IsActive: true, UsageLimit: 5, UsedCount: 5}
	if err := env.couponSvc.Validate(limited, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponLimitReached) {
		t.Fatalf("exhausted coupon want ErrCouponLimitReached got %v", err)
	}

	specific := &models.Coupon{Code: "X", IsActive: true, ApplicableTo: constants.CouponApplicableAll, TargetUser: constants.CouponTargetSpecificUser, TargetUserIDs: models.UintList{7, 8}}
	if err := env.couponSvc.Validate(specific, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponNotEligible) {
		t.Fatalf("untargeted user want ErrCouponNotEligible got %v", err)
	}
	if err := env.couponSvc.Validate(specific, subtotal, constants.CouponApplicableAll, 7, now); err != nil {
		t.Fatalf("targeted user should pass, got %v", err)
	}

	scoped := &models.Coupon{Code: "X", IsActive: true, ApplicableTo: constants.ProductTypeEbook}
	if err := env.couponSvc.Validate(scoped, subtotal, constants.CouponApplicableAll, 1, now); !errors.Is(err, ErrCouponNotApplicable) {
		t.Fatalf("mixed cart with scoped coupon want ErrCouponNotApplicable got %v", err)
	}
	if err := env.couponSvc.Validate(scoped, subtotal, constants.ProductTypeEbook, 1, now); err != nil {
		t.Fatalf("matching tag should pass, got %v", err)
	}
}

func TestValidateNewUserCoupon(t *testing.T) {
	env := newServiceTestEnv(t, "coupon_new_user")
	fresh := env.createUser(t, "fresh@example.com")
	veteran := env.createUser(t, "veteran@example.com")
	order := &models.Order{OrderNo: "EK1", UserID: veteran.ID, Status: constants.OrderStatusSettled,
		TotalAmount: mustMoney("100.00"), FinalAmount: mustMoney("100.00"), DiscountAmount: mustMoney("0.00")}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	coupon := &models.Coupon{Code: "WELCOME", IsActive: true, ApplicableTo: constants.CouponApplicableAll, TargetUser: constants.CouponTargetNewUser}
	subtotal := mustMoney("1000.00")

	if err := env.couponSvc.Validate(coupon, subtotal, constants.CouponApplicableAll, fresh.ID, time.Now()); err != nil {
		t.Fatalf("first-time buyer should pass, got %v", err)
	}
	if err := env.couponSvc.Validate(coupon, subtotal, constants.CouponApplicableAll, veteran.ID, time.Now()); !errors.Is(err, ErrCouponNotEligible) {
		t.Fatalf("buyer with history want ErrCouponNotEligible got %v", err)
	}
}

func TestResolveCoupon(t *testing.T) {
	env := newServiceTestEnv(t, "coupon_resolve")
	coupon := &models.Coupon{Code: "SAVE200", IsActive: true, DiscountType: constants.CouponTypeFixed, DiscountValue: mustMoney("200.00")}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	got, err := env.couponSvc.Resolve("SAVE200")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Code != "SAVE200" {
		t.Fatalf("code want SAVE200 got %s", got.Code)
	}

	if _, err := env.couponSvc.Resolve("NOPE"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("unknown code want ErrCouponNotFound got %v", err)
	}
	if _, err := env.couponSvc.Resolve("  "); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("blank code want ErrCouponNotFound got %v", err)
	}
}

func TestComputeDiscount(t *testing.T) {
	env := newServiceTestEnv(t, "coupon_discount")

	percent := &models.Coupon{
		DiscountType:  constants.CouponTypePercent,
		DiscountValue: mustMoney("10.00"),
		MaxDiscount:   mustMoney("50.00"),
	}
	got := env.couponSvc.ComputeDiscount(percent, mustMoney("1000.00"))
	if !got.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("capped percent discount want 50.00 got %s", got.String())
	}

	percent.MaxDiscount = mustMoney("0.00")
	got = env.couponSvc.ComputeDiscount(percent, mustMoney("1000.00"))
	if !got.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("uncapped percent discount want 100.00 got %s", got.String())
	}

	fixed := &models.Coupon{
		DiscountType:  constants.CouponTypeFixed,
		DiscountValue: mustMoney("200.00"),
	}
	got = env.couponSvc.ComputeDiscount(fixed, mustMoney("150.00"))
	if !got.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("fixed discount must clamp to subtotal, got %s", got.String())
	}

	got = env.couponSvc.ComputeDiscount(nil, mustMoney("150.00"))
	if !got.IsZero() {
		t.Fatalf("nil coupon discount want 0 got %s", got.String())
	}
}

func TestQuoteAppliesCouponBeforeFreeLines(t *testing.T) {
	// A percent coupon prices off the paying subtotal; free lines never
	// inflate the base.
	env := newServiceTestEnv(t, "coupon_free_lines")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Course", "500.00")
	env.createFreeItem(t, constants.ProductTypeEbook, 1, "Free Notes")
	coupon := &models.Coupon{
		Code:          "TEN",
		DiscountType:  constants.CouponTypePercent,
		DiscountValue: mustMoney("10.00"),
		ApplicableTo:  constants.CouponApplicableAll,
		TargetUser:    constants.CouponTargetAll,
		IsActive:      true,
	}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	quote, err := env.pricing.BuildQuote(context.Background(), models.CartSelection{CourseIDs: []uint{1}, EbookIDs: []uint{1}}, "TEN", user.ID)
	if err != nil {
		t.Fatalf("build quote failed: %v", err)
	}
	if !quote.DiscountAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("discount want 50.00 got %s", quote.DiscountAmount.String())
	}
	if !quote.Total.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("total want 450.00 got %s", quote.Total.String())
	}
}
