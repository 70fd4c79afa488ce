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

func TestBuildQuoteCourseWithFreeEbookAndCoupon(t *testing.T) {
	env := newServiceTestEnv(t, "pricing_quote")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Maths Course", "1000.00")
	env.createFreeItem(t, constants.ProductTypeEbook, 1, "Free Notes")
	coupon := &models.Coupon{
		Code:          "SAVE200",
		DiscountType:  constants.CouponTypeFixed,
		DiscountValue: testMoney(t, "200.00"),
		MinAmount:     testMoney(t, "500.00"),
		ApplicableTo:  constants.CouponApplicableAll,
		TargetUser:    constants.CouponTargetAll,
		IsActive:      true,
	}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	cart := models.CartSelection{CourseIDs: []uint{1}, EbookIDs: []uint{1}}
	quote, err := env.pricing.BuildQuote(context.Background(), cart, "SAVE200", user.ID)
	if err != nil {
		t.Fatalf("build quote failed: %v", err)
	}

	if len(quote.Lines) != 2 {
		t.Fatalf("lines want 2 got %d", len(quote.Lines))
	}
	if !quote.Subtotal.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("subtotal want 1000.00 got %s", quote.Subtotal.String())
	}
	if !quote.DiscountAmount.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("discount want 200.00 got %s", quote.DiscountAmount.String())
	}
	if !quote.Total.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("total want 800.00 got %s", quote.Total.String())
	}

	var freeLine *PriceableLine
	for i := range quote.Lines {
		if quote.Lines[i].IsFree {
			freeLine = &quote.Lines[i]
		}
	}
	if freeLine == nil {
		t.Fatalf("free ebook line missing from quote")
	}
	if !freeLine.UnitPrice.IsZero() {
		t.Fatalf("free line unit price want 0 got %s", freeLine.UnitPrice.String())
	}
}

func TestBuildQuoteDropsUnknownItems(t *testing.T) {
	env := newServiceTestEnv(t, "pricing_dropped")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Maths Course", "1000.00")

	cart := models.CartSelection{CourseIDs: []uint{1, 99}}
	quote, err := env.pricing.BuildQuote(context.Background(), cart, "", user.ID)
	if err != nil {
		t.Fatalf("build quote failed: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("lines want 1 got %d", len(quote.Lines))
	}
	if len(quote.DroppedItems) != 1 || quote.DroppedItems[0].ItemID != 99 {
		t.Fatalf("dropped items want course 99, got %+v", quote.DroppedItems)
	}
	if !quote.Total.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("dropped item must not price, total got %s", quote.Total.String())
	}
}

func TestBuildQuoteEmptyCart(t *testing.T) {
	env := newServiceTestEnv(t, "pricing_empty")
	user := env.createUser(t, "buyer@example.com")

	_, err := env.pricing.BuildQuote(context.Background(), models.CartSelection{}, "", user.ID)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart got %v", err)
	}

	// A cart of only unknown ids resolves to nothing and fails the same way.
	_, err = env.pricing.BuildQuote(context.Background(), models.CartSelection{CourseIDs: []uint{404}}, "", user.ID)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart for all-dropped cart, got %v", err)
	}
}

func TestBuildQuoteDeduplicatesSelection(t *testing.T) {
	env := newServiceTestEnv(t, "pricing_dedupe")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Maths Course", "1000.00")

	cart := models.CartSelection{CourseIDs: []uint{1, 1, 1}}
	quote, err := env.pricing.BuildQuote(context.Background(), cart, "", user.ID)
	if err != nil {
		t.Fatalf("build quote failed: %v", err)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("duplicate ids must collapse to one line, got %d", len(quote.Lines))
	}
	if !quote.Subtotal.Equal(decimal.RequireFromString("1000.00")) {
		t.Fatalf("subtotal want 1000.00 got %s", quote.Subtotal.String())
	}
}

func TestResolvePriceFreshPrecedence(t *testing.T) {
	env := newServiceTestEnv(t, "pricing_precedence")
	item := &models.CatalogItem{
		ProductType: constants.ProductTypeCourse,
		RefID:       1,
		Title:       "Maths Course",
		BasePrice:   testMoney(t, "3999.00"),
		IsActive:    true,
	}
	sale := testMoney(t, "2999.00")
	item.SalePrice = &sale
	if err := env.db.Create(item).Error; err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	line, err := env.catalogSvc.ResolvePriceFresh(context.Background(), constants.ProductTypeCourse, 1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("2999.00")) {
		t.Fatalf("sale price should win over base, got %s", line.UnitPrice.String())
	}

	flash := &models.FlashSale{
		Name:          "Monsoon Sale",
		ProductType:   constants.ProductTypeCourse,
		ItemID:        1,
		DiscountPrice: testMoney(t, "1999.00"),
		StartsAt:      time.Now().Add(-time.Hour),
		EndsAt:        time.Now().Add(time.Hour),
		IsActive:      true,
	}
	if err := env.db.Create(flash).Error; err != nil {
		t.Fatalf("create flash sale failed: %v", err)
	}

	line, err = env.catalogSvc.ResolvePriceFresh(context.Background(), constants.ProductTypeCourse, 1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("1999.00")) {
		t.Fatalf("flash price should win over sale price, got %s", line.UnitPrice.String())
	}
	if line.FlashSaleID != flash.ID {
		t.Fatalf("flash sale id want %d got %d", flash.ID, line.FlashSaleID)
	}

	// An ended flash sale stops applying.
	if err := env.db.Model(&models.FlashSale{}).Where("id = ?", flash.ID).
		Update("ends_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("end flash sale failed: %v", err)
	}
	line, err = env.catalogSvc.ResolvePriceFresh(context.Background(), constants.ProductTypeCourse, 1)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("2999.00")) {
		t.Fatalf("expired flash sale must not price, got %s", line.UnitPrice.String())
	}
}

func TestTagForTypes(t *testing.T) {
	single := []PriceableLine{
		{ProductType: constants.ProductTypeEbook},
		{ProductType: constants.ProductTypeEbook},
	}
	if tag := tagForTypes(single); tag != constants.ProductTypeEbook {
		t.Fatalf("single-type cart tag want ebook got %s", tag)
	}

	mixed := []PriceableLine{
		{ProductType: constants.ProductTypeEbook},
		{ProductType: constants.ProductTypeCourse},
	}
	if tag := tagForTypes(mixed); tag != constants.CouponApplicableAll {
		t.Fatalf("mixed cart tag want all got %s", tag)
	}

	if tag := tagForTypes(nil); tag != constants.CouponApplicableAll {
		t.Fatalf("empty cart tag want all got %s", tag)
	}
}
