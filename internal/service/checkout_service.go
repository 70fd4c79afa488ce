package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/payment/razorpay"
	"github.com/edukart-next/internal/queue"
	"github.com/edukart-next/internal/repository"
	"github.com/shopspring/decimal"
)

// PaymentSessionInfo is the client-facing session descriptor: everything
// the payment SDK needs to open, nothing it doesn't.
type PaymentSessionInfo struct {
	SessionNo       string       `json:"session_no"`
	ProviderOrderID string       `json:"provider_order_id"`
	Amount          models.Money `json:"amount"`
	Currency        string       `json:"currency"`
	Key             string       `json:"key"`
}

// InitResult is what checkout initiation returns: either a settled free
// order or a payment session to hand to the provider SDK.
type InitResult struct {
	Free    bool                `json:"free"`
	Order   *models.Order       `json:"order,omitempty"`
	Session *PaymentSessionInfo `json:"session,omitempty"`
}

// CheckoutService drives quote and payment-session initiation.
type CheckoutService struct {
	pricing     *PricingService
	settlement  *SettlementService
	sessionRepo repository.CheckoutSessionRepository
	gateway     PaymentGateway
	queueClient *queue.Client
	currency    string
	sessionTTL  time.Duration
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(
	pricing *PricingService,
	settlement *SettlementService,
	sessionRepo repository.CheckoutSessionRepository,
	gateway PaymentGateway,
	queueClient *queue.Client,
	currency string,
	sessionTTL time.Duration,
) *CheckoutService {
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &CheckoutService{
		pricing:     pricing,
		settlement:  settlement,
		sessionRepo: sessionRepo,
		gateway:     gateway,
		queueClient: queueClient,
		currency:    currency,
		sessionTTL:  sessionTTL,
	}
}

// Quote prices a cart without side effects.
func (s *CheckoutService) Quote(ctx context.Context, cart models.CartSelection, couponCode string, userID uint) (*PricingQuote, error) {
	return s.pricing.BuildQuote(ctx, cart, couponCode, userID)
}

// Init starts a checkout. A zero-total cart settles immediately without any
// provider contact; anything else persists a session first and then runs
// the provider handshake.
func (s *CheckoutService) Init(ctx context.Context, cart models.CartSelection, couponCode string, userID uint) (*InitResult, error) {
	quote, err := s.pricing.BuildQuote(ctx, cart, couponCode, userID)
	if err != nil {
		return nil, err
	}

	if quote.Total.IsZero() {
		result, err := s.settlement.SettleFree(ctx, cart, couponCode, userID)
		if err != nil && !errors.Is(err, ErrPartialSettlement) {
			return nil, err
		}
		logger.Infow("checkout_settled_free",
			"user_id", userID,
			"order_no", result.Order.OrderNo,
		)
		// A partial settlement still returns the order; err carries the flag.
		return &InitResult{Free: true, Order: result.Order}, err
	}

	session := &models.CheckoutSession{
		SessionNo:      generateSessionNo(),
		UserID:         userID,
		CouponCode:     quote.CouponCode,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		Amount:         quote.Total,
		Currency:       s.currency,
		Status:         constants.SessionStatusCreated,
		ExpiresAt:      time.Now().Add(s.sessionTTL),
	}
	if err := session.EncodeCart(cart); err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	// The session exists before the provider hears about the attempt, so a
	// capture can always be matched back to an internal reference.
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	created, err := s.gateway.CreateOrder(ctx, razorpay.CreateInput{
		AmountPaise: moneyToMinorUnits(quote.Total),
		Currency:    s.currency,
		Receipt:     session.SessionNo,
	})
	if err != nil {
		logger.Errorw("provider_order_create_failed",
			"session_no", session.SessionNo,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	session.ProviderOrderID = created.ProviderOrderID
	session.ProviderKey = created.Key
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueSessionExpire(queue.SessionExpirePayload{SessionID: session.ID}, s.sessionTTL); err != nil {
		logger.Warnw("session_expire_enqueue_failed", "session_no", session.SessionNo, "error", err)
	}

	logger.Infow("checkout_session_created",
		"user_id", userID,
		"session_no", session.SessionNo,
		"provider_order_id", session.ProviderOrderID,
		"amount", session.Amount.String(),
	)

	return &InitResult{
		Session: &PaymentSessionInfo{
			SessionNo:       session.SessionNo,
			ProviderOrderID: session.ProviderOrderID,
			Amount:          session.Amount,
			Currency:        session.Currency,
			Key:             session.ProviderKey,
		},
	}, nil
}

// moneyToMinorUnits converts a 2-decimal amount to the currency's smallest
// unit (rupees to paise).
func moneyToMinorUnits(amount models.Money) int64 {
	return amount.Decimal.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
