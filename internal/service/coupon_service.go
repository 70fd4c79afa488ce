package service

import (
	"strings"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/repository"
	"github.com/shopspring/decimal"
)

// CouponService validates and prices coupon codes.
type CouponService struct {
	couponRepo repository.CouponRepository
	orderRepo  repository.OrderRepository
}

// NewCouponService creates a coupon service.
func NewCouponService(couponRepo repository.CouponRepository, orderRepo repository.OrderRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
	}
}

// Resolve fetches a coupon by code.
func (s *CouponService) Resolve(code string) (*models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrCouponNotFound
	}
	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Validate runs the full check sequence against a cart. The first failing
// rule wins, in this fixed order: validity window, minimum amount, usage
// limit, user targeting, cart applicability.
func (s *CouponService) Validate(coupon *models.Coupon, subtotal models.Money, cartTag string, userID uint, now time.Time) error {
	if coupon == nil {
		return ErrCouponNotFound
	}
	if !coupon.IsActive || !coupon.WithinValidity(now) {
		return ErrCouponInactive
	}
	if subtotal.LessThan(coupon.MinAmount.Decimal) {
		return ErrCouponBelowMinimum
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return ErrCouponLimitReached
	}

	switch coupon.TargetUser {
	case constants.CouponTargetNewUser:
		count, err := s.orderRepo.CountByUser(userID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCouponNotEligible
		}
	case constants.CouponTargetSpecificUser:
		if !coupon.TargetUserIDs.Contains(userID) {
			return ErrCouponNotEligible
		}
	}

	if coupon.ApplicableTo != constants.CouponApplicableAll && coupon.ApplicableTo != cartTag {
		return ErrCouponNotApplicable
	}
	return nil
}

// ComputeDiscount prices the coupon against a subtotal. Percent coupons are
// capped by MaxDiscount when set; fixed coupons never exceed the subtotal.
func (s *CouponService) ComputeDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	if coupon == nil {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case constants.CouponTypePercent:
		discount = subtotal.Mul(coupon.DiscountValue.Decimal).
			Div(decimal.NewFromInt(100)).
			Round(2)
		if coupon.MaxDiscount.IsPositive() && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	default:
		discount = coupon.DiscountValue.Decimal
	}

	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}
