package public

import (
	"errors"

	"github.com/edukart-next/internal/http/response"
	"github.com/edukart-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a business error onto an API error reply.
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCouponErrorRules = []mappedHandlerError{
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponBelowMinimum, code: response.CodeBadRequest, key: "error.coupon_below_minimum"},
	{target: service.ErrCouponLimitReached, code: response.CodeBadRequest, key: "error.coupon_limit_reached"},
	{target: service.ErrCouponNotEligible, code: response.CodeBadRequest, key: "error.coupon_not_eligible"},
	{target: service.ErrCouponNotApplicable, code: response.CodeBadRequest, key: "error.coupon_not_applicable"},
}

var checkoutInitExtraErrorRules = []mappedHandlerError{
	{target: service.ErrProviderUnavailable, code: response.CodeInternal, key: "error.provider_unavailable"},
	{target: service.ErrSlotUnavailable, code: response.CodeConflict, key: "error.slot_unavailable"},
	{target: service.ErrBatchFull, code: response.CodeConflict, key: "error.batch_full"},
}

var checkoutCompleteErrorRules = []mappedHandlerError{
	{target: service.ErrSessionNotFound, code: response.CodeNotFound, key: "error.session_not_found"},
	{target: service.ErrSessionExpired, code: response.CodeBadRequest, key: "error.session_expired"},
	{target: service.ErrSessionUnusable, code: response.CodeBadRequest, key: "error.session_unusable"},
	{target: service.ErrSignatureMismatch, code: response.CodeUnprocessable, key: "error.signature_mismatch"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
}

var orderQueryErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
}
