package public

import (
	"errors"

	"github.com/edukart-next/internal/http/response"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/service"

	"github.com/gin-gonic/gin"
)

type checkoutQuoteRequest struct {
	Cart       models.CartSelection `json:"cart"`
	CouponCode string               `json:"coupon_code"`
}

type checkoutCompleteRequest struct {
	ProviderOrderID   string `json:"provider_order_id" binding:"required"`
	ProviderPaymentID string `json:"provider_payment_id" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

// CheckoutQuote prices a cart without side effects.
// POST /api/v1/checkout/quote
func (h *Handler) CheckoutQuote(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req checkoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.request_invalid", err)
		return
	}

	quote, err := h.CheckoutService.Quote(c.Request.Context(), req.Cart, req.CouponCode, userID)
	if err != nil {
		respondWithMappedError(c, err, cartCouponErrorRules, response.CodeInternal, "error.quote_failed")
		return
	}
	response.Success(c, quote)
}

// CheckoutInit starts a checkout: free carts settle immediately, paid carts
// get a payment session.
// POST /api/v1/checkout/init
func (h *Handler) CheckoutInit(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req checkoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.request_invalid", err)
		return
	}

	result, err := h.CheckoutService.Init(c.Request.Context(), req.Cart, req.CouponCode, userID)
	if err != nil && errors.Is(err, service.ErrPartialSettlement) {
		response.ErrorWithData(c, response.CodeConflict, "error.partial_settlement", gin.H{
			"order": buildOrderPayload(result.Order),
		})
		return
	}
	if err != nil {
		rules := concatMappedHandlerErrors(cartCouponErrorRules, checkoutInitExtraErrorRules)
		respondWithMappedError(c, err, rules, response.CodeInternal, "error.checkout_init_failed")
		return
	}

	if result.Free {
		response.Success(c, gin.H{
			"free":  true,
			"order": buildOrderPayload(result.Order),
		})
		return
	}
	response.Success(c, gin.H{
		"free":    false,
		"session": result.Session,
	})
}

// CheckoutComplete settles a captured payment.
// POST /api/v1/checkout/complete
func (h *Handler) CheckoutComplete(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req checkoutCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.request_invalid", err)
		return
	}

	result, err := h.SettlementService.Complete(
		c.Request.Context(),
		req.ProviderOrderID,
		req.ProviderPaymentID,
		req.Signature,
	)
	if err != nil && errors.Is(err, service.ErrPartialSettlement) {
		response.ErrorWithData(c, response.CodeConflict, "error.partial_settlement", gin.H{
			"order":        buildOrderPayload(result.Order),
			"failed_lines": result.FailedLines,
		})
		return
	}
	if err != nil {
		respondWithMappedError(c, err, checkoutCompleteErrorRules, response.CodeInternal, "error.checkout_complete_failed")
		return
	}

	response.Success(c, gin.H{
		"order":           buildOrderPayload(result.Order),
		"already_settled": result.AlreadySettled,
	})
}
