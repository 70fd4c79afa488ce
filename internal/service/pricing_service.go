package service

import (
	"context"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/models"
	"github.com/shopspring/decimal"
)

// PricingQuote is the full price breakdown for a cart. It is derived from
// resolver reads plus the coupon only, so re-running it over the same
// persisted inputs reproduces the same amounts.
type PricingQuote struct {
	Lines          []PriceableLine    `json:"lines"`
	DroppedItems   []models.CartEntry `json:"dropped_items,omitempty"`
	CouponCode     string             `json:"coupon_code,omitempty"`
	Subtotal       models.Money       `json:"subtotal"`
	DiscountAmount models.Money       `json:"discount_amount"`
	Total          models.Money       `json:"total"`
}

// PricingService builds quotes from cart selections.
type PricingService struct {
	catalog   *CatalogService
	couponSvc *CouponService
}

// NewPricingService creates a pricing service.
func NewPricingService(catalog *CatalogService, couponSvc *CouponService) *PricingService {
	return &PricingService{
		catalog:   catalog,
		couponSvc: couponSvc,
	}
}

// BuildQuote prices a cart through the cached resolver.
func (s *PricingService) BuildQuote(ctx context.Context, cart models.CartSelection, couponCode string, userID uint) (*PricingQuote, error) {
	return s.buildQuote(ctx, cart, couponCode, userID, s.catalog.ResolvePrice)
}

// BuildQuoteFresh prices a cart bypassing the price cache. Settlement uses
// this so the amounts come from current catalog rows only.
func (s *PricingService) BuildQuoteFresh(ctx context.Context, cart models.CartSelection, couponCode string, userID uint) (*PricingQuote, error) {
	return s.buildQuote(ctx, cart, couponCode, userID, s.catalog.ResolvePriceFresh)
}

type priceResolver func(ctx context.Context, productType string, itemID uint) (*PriceableLine, error)

func (s *PricingService) buildQuote(ctx context.Context, cart models.CartSelection, couponCode string, userID uint, resolve priceResolver) (*PricingQuote, error) {
	entries := cart.Entries()

	quote := &PricingQuote{}
	for _, entry := range entries {
		line, err := resolve(ctx, entry.ProductType, entry.ItemID)
		if err != nil {
			return nil, err
		}
		if line == nil {
			// Unknown or inactive items never price; they are reported, not sold.
			quote.DroppedItems = append(quote.DroppedItems, entry)
			continue
		}
		quote.Lines = append(quote.Lines, *line)
	}
	if len(quote.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, line := range quote.Lines {
		if line.IsFree {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Decimal)
	}
	quote.Subtotal = models.NewMoneyFromDecimal(subtotal)

	discount := decimal.Zero
	if couponCode != "" {
		coupon, err := s.couponSvc.Resolve(couponCode)
		if err != nil {
			return nil, err
		}
		tag := tagForTypes(quote.Lines)
		if err := s.couponSvc.Validate(coupon, quote.Subtotal, tag, userID, time.Now()); err != nil {
			return nil, err
		}
		discount = s.couponSvc.ComputeDiscount(coupon, quote.Subtotal).Decimal
		quote.CouponCode = coupon.Code
	}
	quote.DiscountAmount = models.NewMoneyFromDecimal(discount)

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	quote.Total = models.NewMoneyFromDecimal(total)
	return quote, nil
}

// tagForTypes derives the coupon applicability tag of a cart: the product
// type itself when exactly one is present, "all" otherwise.
func tagForTypes(lines []PriceableLine) string {
	var single string
	for _, line := range lines {
		if single == "" {
			single = line.ProductType
			continue
		}
		if line.ProductType != single {
			return constants.CouponApplicableAll
		}
	}
	if single == "" {
		return constants.CouponApplicableAll
	}
	return single
}
