package service

import "errors"

// Cart and pricing errors.
var (
	ErrEmptyCart = errors.New("cart resolves to no purchasable items")
)

// Coupon errors, ordered the way validation reports them.
var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon inactive or outside validity window")
	ErrCouponBelowMinimum  = errors.New("cart subtotal below coupon minimum")
	ErrCouponLimitReached  = errors.New("coupon usage limit reached")
	ErrCouponNotEligible   = errors.New("user not eligible for coupon")
	ErrCouponNotApplicable = errors.New("coupon not applicable to cart contents")
)

// Checkout and settlement errors.
var (
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrSessionExpired      = errors.New("checkout session expired")
	ErrSessionUnusable     = errors.New("checkout session already failed")
	ErrSignatureMismatch   = errors.New("payment signature mismatch")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrPartialSettlement   = errors.New("settlement completed with pending lines")
	ErrOrderNotFound       = errors.New("order not found")
)

// Enrollment errors.
var (
	ErrSlotUnavailable = errors.New("guidance slot already booked")
	ErrBatchFull       = errors.New("offline batch has no seats left")
)
