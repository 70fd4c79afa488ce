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
	"gorm.io/gorm"
)

// FailedLine describes one sub-order whose enrollment did not go through.
type FailedLine struct {
	SubOrderID  uint   `json:"sub_order_id"`
	ProductType string `json:"product_type"`
	ItemID      uint   `json:"item_id"`
	Reason      string `json:"reason"`
}

// SettlementResult is the outcome of a completion attempt.
type SettlementResult struct {
	Order          *models.Order `json:"order"`
	AlreadySettled bool          `json:"already_settled"`
	FailedLines    []FailedLine  `json:"failed_lines,omitempty"`
}

// SettlementService turns a verified payment into an order exactly once.
// Captured money is never rolled back: a line whose enrollment fails stays
// pending with a follow-up instead of voiding the settlement.
type SettlementService struct {
	db              *gorm.DB
	pricing         *PricingService
	catalog         *CatalogService
	sessionRepo     repository.CheckoutSessionRepository
	orderRepo       repository.OrderRepository
	couponRepo      repository.CouponRepository
	couponUsageRepo repository.CouponUsageRepository
	enrollRepo      repository.EnrollmentRepository
	queueClient     *queue.Client
	providerSecret  string
}

// NewSettlementService creates a settlement service.
func NewSettlementService(
	db *gorm.DB,
	pricing *PricingService,
	catalog *CatalogService,
	sessionRepo repository.CheckoutSessionRepository,
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	couponUsageRepo repository.CouponUsageRepository,
	enrollRepo repository.EnrollmentRepository,
	queueClient *queue.Client,
	providerSecret string,
) *SettlementService {
	return &SettlementService{
		db:              db,
		pricing:         pricing,
		catalog:         catalog,
		sessionRepo:     sessionRepo,
		orderRepo:       orderRepo,
		couponRepo:      couponRepo,
		couponUsageRepo: couponUsageRepo,
		enrollRepo:      enrollRepo,
		queueClient:     queueClient,
		providerSecret:  providerSecret,
	}
}

// Complete settles a captured payment. The signature is checked before
// anything else; a mismatch poisons the session and creates nothing.
// Verified completions are idempotent: the same triple always lands on the
// same order.
func (s *SettlementService) Complete(ctx context.Context, providerOrderID, providerPaymentID, signature string) (*SettlementResult, error) {
	session, err := s.sessionRepo.GetByProviderOrderID(providerOrderID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if err := razorpay.VerifySignature(providerOrderID, providerPaymentID, signature, s.providerSecret); err != nil {
		if markErr := s.sessionRepo.MarkFailed(session.ID); markErr != nil {
			logger.Errorw("session_mark_failed_error", "session_no", session.SessionNo, "error", markErr)
		}
		logger.Warnw("settlement_signature_mismatch",
			"session_no", session.SessionNo,
			"provider_order_id", providerOrderID,
		)
		return nil, ErrSignatureMismatch
	}

	switch session.Status {
	case constants.SessionStatusSettled:
		return s.readBack(session)
	case constants.SessionStatusFailed:
		return nil, ErrSessionUnusable
	case constants.SessionStatusExpired:
		return nil, ErrSessionExpired
	}

	var order *models.Order
	claimed := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		won, err := s.sessionRepo.WithTx(tx).ClaimForSettlement(session.ID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		claimed = true

		order, err = s.materialize(ctx, tx, session, providerPaymentID)
		if err != nil {
			return err
		}
		return s.sessionRepo.WithTx(tx).AttachOrder(session.ID, order.ID)
	})
	if err != nil {
		return nil, err
	}

	if !claimed {
		// Lost the race: another completion settled this session. Read its
		// order back instead of creating a second one.
		fresh, err := s.sessionRepo.GetByProviderOrderID(providerOrderID)
		if err != nil {
			return nil, err
		}
		if fresh == nil || fresh.Status != constants.SessionStatusSettled {
			return nil, fmt.Errorf("session %s in unexpected state after lost claim", session.SessionNo)
		}
		return s.readBack(fresh)
	}

	logger.Infow("settlement_completed",
		"session_no", session.SessionNo,
		"order_no", order.OrderNo,
		"provider_payment_id", providerPaymentID,
	)
	return s.grantLines(ctx, order)
}

// SettleFree settles a zero-total cart with no provider involved.
func (s *SettlementService) SettleFree(ctx context.Context, cart models.CartSelection, couponCode string, userID uint) (*SettlementResult, error) {
	quote, err := s.pricing.BuildQuoteFresh(ctx, cart, couponCode, userID)
	if err != nil {
		return nil, err
	}
	if !quote.Total.IsZero() {
		return nil, fmt.Errorf("cart total %s is not free", quote.Total.String())
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		order = &models.Order{
			OrderNo:        generateOrderNo(),
			UserID:         userID,
			CouponCode:     quote.CouponCode,
			DiscountAmount: quote.DiscountAmount,
			TotalAmount:    quote.Subtotal,
			FinalAmount:    quote.Total,
			Status:         constants.OrderStatusSettled,
		}
		for _, line := range quote.Lines {
			order.SubOrders = append(order.SubOrders, models.SubOrder{
				ProductType:   line.ProductType,
				ItemID:        line.ItemID,
				Title:         line.Title,
				UnitPrice:     line.UnitPrice,
				AmountPaid:    models.NewMoneyFromDecimal(decimal.Zero),
				PaymentStatus: constants.SubOrderStatusFree,
			})
		}
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		return s.recordCouponUse(tx, quote.CouponCode, userID, order.ID, quote.DiscountAmount)
	})
	if err != nil {
		return nil, err
	}

	return s.grantLines(ctx, order)
}

// RetryLine re-attempts the enrollment of a pending sub-order. Called by
// the worker; an error means asynq should retry later.
func (s *SettlementService) RetryLine(ctx context.Context, subOrderID uint) error {
	subOrder, err := s.orderRepo.GetSubOrder(subOrderID)
	if err != nil {
		return err
	}
	if subOrder == nil || !subOrder.FollowUpRequired {
		return nil
	}
	order, err := s.orderRepo.GetByID(subOrder.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if err := s.grantLine(order.UserID, order.ID, subOrder); err != nil {
		return err
	}

	if subOrder.AmountPaid.IsPositive() {
		subOrder.PaymentStatus = constants.SubOrderStatusPaid
	} else {
		subOrder.PaymentStatus = constants.SubOrderStatusFree
	}
	subOrder.FollowUpRequired = false
	subOrder.FailureReason = ""
	if err := s.orderRepo.UpdateSubOrder(subOrder); err != nil {
		return err
	}

	// Once the last pending line clears, the order itself is fully settled.
	refreshed, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return err
	}
	allClear := true
	for _, line := range refreshed.SubOrders {
		if line.FollowUpRequired {
			allClear = false
			break
		}
	}
	if allClear && refreshed.Status == constants.OrderStatusPartiallySettled {
		if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusSettled); err != nil {
			return err
		}
	}
	logger.Infow("settlement_line_recovered", "sub_order_id", subOrderID, "order_no", order.OrderNo)
	return nil
}

// RetryFollowUps re-attempts every sub-order still flagged for follow-up.
// It backs the worker sweep, so pending lines recover even when their retry
// task was lost or the queue is disabled. Returns how many lines cleared.
func (s *SettlementService) RetryFollowUps(ctx context.Context, limit int) (int, error) {
	subOrders, err := s.orderRepo.ListFollowUpSubOrders(limit)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for i := range subOrders {
		if err := ctx.Err(); err != nil {
			return recovered, err
		}
		err := s.RetryLine(ctx, subOrders[i].ID)
		if err == nil {
			recovered++
			continue
		}
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrBatchFull) {
			// The resource is genuinely gone; the line keeps its flag for
			// manual resolution.
			continue
		}
		logger.Warnw("settlement_follow_up_retry_failed", "sub_order_id", subOrders[i].ID, "error", err)
	}
	return recovered, nil
}

// ExpireSessions marks overdue created sessions expired.
func (s *SettlementService) ExpireSessions(now time.Time) (int64, error) {
	return s.sessionRepo.ExpireOverdue(now)
}

// GetOrder fetches an order for its owner.
func (s *SettlementService) GetOrder(id uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders fetches a user's order page.
func (s *SettlementService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

func (s *SettlementService) readBack(session *models.CheckoutSession) (*SettlementResult, error) {
	if session.OrderID == nil {
		return nil, fmt.Errorf("settled session %s has no order", session.SessionNo)
	}
	order, err := s.orderRepo.GetByID(*session.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return &SettlementResult{Order: order, AlreadySettled: true}, nil
}

// materialize builds the order inside the settlement transaction. Amounts
// come from the session snapshot (what the provider actually captured);
// line details come from fresh catalog reads.
func (s *SettlementService) materialize(ctx context.Context, tx *gorm.DB, session *models.CheckoutSession, providerPaymentID string) (*models.Order, error) {
	cart, err := session.Cart()
	if err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}

	var lines []PriceableLine
	var unresolved []models.CartEntry
	for _, entry := range cart.Entries() {
		line, err := s.catalog.ResolvePriceFresh(ctx, entry.ProductType, entry.ItemID)
		if err != nil {
			return nil, err
		}
		if line == nil {
			unresolved = append(unresolved, entry)
			continue
		}
		lines = append(lines, *line)
	}

	order := &models.Order{
		OrderNo:           generateOrderNo(),
		UserID:            session.UserID,
		CouponCode:        session.CouponCode,
		DiscountAmount:    session.DiscountAmount,
		TotalAmount:       session.Subtotal,
		FinalAmount:       session.Amount,
		ProviderOrderID:   session.ProviderOrderID,
		ProviderPaymentID: providerPaymentID,
		Status:            constants.OrderStatusSettled,
	}

	shares := distributeAmount(session.Amount.Decimal, lines)
	for i, line := range lines {
		status := constants.SubOrderStatusPaid
		if line.IsFree || !shares[i].IsPositive() {
			status = constants.SubOrderStatusFree
		}
		order.SubOrders = append(order.SubOrders, models.SubOrder{
			ProductType:   line.ProductType,
			ItemID:        line.ItemID,
			Title:         line.Title,
			UnitPrice:     line.UnitPrice,
			AmountPaid:    models.NewMoneyFromDecimal(shares[i]),
			PaymentStatus: status,
		})
	}
	// Items that vanished between init and capture still cost the buyer
	// nothing extra, but their access needs manual or retried follow-up.
	for _, entry := range unresolved {
		order.SubOrders = append(order.SubOrders, models.SubOrder{
			ProductType:      entry.ProductType,
			ItemID:           entry.ItemID,
			Title:            "",
			AmountPaid:       models.NewMoneyFromDecimal(decimal.Zero),
			PaymentStatus:    constants.SubOrderStatusPending,
			FollowUpRequired: true,
			FailureReason:    "item_unavailable",
		})
	}

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}
	if err := s.recordCouponUse(tx, session.CouponCode, session.UserID, order.ID, session.DiscountAmount); err != nil {
		return nil, err
	}
	return order, nil
}

// recordCouponUse increments the coupon counter and writes the usage row in
// the settlement transaction, so the count moves only with a committed
// order.
func (s *SettlementService) recordCouponUse(tx *gorm.DB, couponCode string, userID, orderID uint, discount models.Money) error {
	if couponCode == "" {
		return nil
	}
	coupon, err := s.couponRepo.WithTx(tx).GetByCode(couponCode)
	if err != nil {
		return err
	}
	if coupon == nil {
		logger.Warnw("coupon_missing_at_settlement", "code", couponCode, "order_id", orderID)
		return nil
	}
	ok, err := s.couponRepo.WithTx(tx).IncrementUsedCount(coupon.ID)
	if err != nil {
		return err
	}
	if !ok {
		// The limit filled up between quote and capture. The money is
		// already taken, so the settlement stands; only the counter refuses.
		logger.Warnw("coupon_limit_exceeded_at_settlement", "code", couponCode, "order_id", orderID)
		return nil
	}
	return s.couponUsageRepo.WithTx(tx).Create(&models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
	})
}

// grantLines attempts every line's enrollment independently after the order
// is committed. A failing line goes pending with a follow-up; the rest
// stand.
func (s *SettlementService) grantLines(ctx context.Context, order *models.Order) (*SettlementResult, error) {
	result := &SettlementResult{Order: order}

	for i := range order.SubOrders {
		subOrder := &order.SubOrders[i]
		if subOrder.PaymentStatus == constants.SubOrderStatusPending {
			s.enqueueFollowUp(subOrder)
			result.FailedLines = append(result.FailedLines, FailedLine{
				SubOrderID:  subOrder.ID,
				ProductType: subOrder.ProductType,
				ItemID:      subOrder.ItemID,
				Reason:      subOrder.FailureReason,
			})
			continue
		}

		if err := s.grantLine(order.UserID, order.ID, subOrder); err != nil {
			logger.Warnw("settlement_line_failed",
				"order_no", order.OrderNo,
				"product_type", subOrder.ProductType,
				"item_id", subOrder.ItemID,
				"error", err,
			)
			subOrder.PaymentStatus = constants.SubOrderStatusPending
			subOrder.FollowUpRequired = true
			subOrder.FailureReason = errMsg(err)
			if updErr := s.orderRepo.UpdateSubOrder(subOrder); updErr != nil {
				logger.Errorw("sub_order_update_failed", "sub_order_id", subOrder.ID, "error", updErr)
			}
			s.enqueueFollowUp(subOrder)
			result.FailedLines = append(result.FailedLines, FailedLine{
				SubOrderID:  subOrder.ID,
				ProductType: subOrder.ProductType,
				ItemID:      subOrder.ItemID,
				Reason:      subOrder.FailureReason,
			})
		}
	}

	if len(result.FailedLines) > 0 {
		order.Status = constants.OrderStatusPartiallySettled
		if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusPartiallySettled); err != nil {
			logger.Errorw("order_status_update_failed", "order_id", order.ID, "error", err)
		}
		return result, ErrPartialSettlement
	}
	return result, nil
}

// grantLine grants access for one line. Already-granted lines succeed so
// retries stay idempotent.
func (s *SettlementService) grantLine(userID, orderID uint, subOrder *models.SubOrder) error {
	switch subOrder.ProductType {
	case constants.ProductTypeGuidance:
		booked, err := s.enrollRepo.BookSlot(subOrder.ItemID, userID)
		if err != nil {
			return err
		}
		if !booked {
			slot, err := s.enrollRepo.GetSlot(subOrder.ItemID)
			if err != nil {
				return err
			}
			if slot == nil || slot.BookedByUserID == nil || *slot.BookedByUserID != userID {
				return ErrSlotUnavailable
			}
			// Slot already held by this user from an earlier attempt.
		}
	case constants.ProductTypeOfflineBatch:
		already, err := s.enrollRepo.Exists(userID, subOrder.ProductType, subOrder.ItemID)
		if err != nil {
			return err
		}
		if !already {
			taken, err := s.enrollRepo.TakeSeat(subOrder.ItemID)
			if err != nil {
				return err
			}
			if !taken {
				return ErrBatchFull
			}
		}
	}

	exists, err := s.enrollRepo.Exists(userID, subOrder.ProductType, subOrder.ItemID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.enrollRepo.Create(&models.Enrollment{
		UserID:      userID,
		ProductType: subOrder.ProductType,
		ItemID:      subOrder.ItemID,
		OrderID:     orderID,
		SubOrderID:  subOrder.ID,
	})
}

func (s *SettlementService) enqueueFollowUp(subOrder *models.SubOrder) {
	err := s.queueClient.EnqueueSettlementRetryLine(queue.SettlementRetryLinePayload{SubOrderID: subOrder.ID})
	if err != nil {
		logger.Warnw("settlement_retry_enqueue_failed", "sub_order_id", subOrder.ID, "error", err)
	}
}

// distributeAmount splits the captured amount across lines proportionally
// to unit price. Rounding remainder lands on the last paying line so the
// shares always sum to the exact total.
func distributeAmount(total decimal.Decimal, lines []PriceableLine) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(lines))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	subtotal := decimal.Zero
	lastPaid := -1
	for i, line := range lines {
		if line.IsFree || !line.UnitPrice.IsPositive() {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Decimal)
		lastPaid = i
	}
	if lastPaid < 0 || !subtotal.IsPositive() || !total.IsPositive() {
		return shares
	}

	allocated := decimal.Zero
	for i, line := range lines {
		if line.IsFree || !line.UnitPrice.IsPositive() || i == lastPaid {
			continue
		}
		share := total.Mul(line.UnitPrice.Decimal).Div(subtotal).Round(2)
		shares[i] = share
		allocated = allocated.Add(share)
	}
	shares[lastPaid] = total.Sub(allocated)
	return shares
}
