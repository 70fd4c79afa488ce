package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/payment/razorpay"

	"github.com/shopspring/decimal"
)

func (env *serviceTestEnv) createSession(t *testing.T, userID uint, cart models.CartSelection, couponCode, subtotal, discount, amount, providerOrderID string) *models.CheckoutSession {
	t.Helper()
	session := &models.CheckoutSession{
		SessionNo:       fmt.Sprintf("EKS%d", time.Now().UnixNano()),
		UserID:          userID,
		CouponCode:      couponCode,
		Subtotal:        testMoney(t, subtotal),
		DiscountAmount:  testMoney(t, discount),
		Amount:          testMoney(t, amount),
		Currency:        constants.SiteCurrencyDefault,
		ProviderOrderID: providerOrderID,
		Status:          constants.SessionStatusCreated,
		ExpiresAt:       time.Now().Add(30 * time.Minute),
	}
	if err := session.EncodeCart(cart); err != nil {
		t.Fatalf("encode cart failed: %v", err)
	}
	if err := env.db.Create(session).Error; err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	return session
}

func countRows(t *testing.T, env *serviceTestEnv, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := env.db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows failed: %v", err)
	}
	return count
}

func TestCompleteIdempotent(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_idempotent")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Maths Course", "1000.00")
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

	cart := models.CartSelection{CourseIDs: []uint{1}}
	session := env.createSession(t, user.ID, cart, "SAVE200", "1000.00", "200.00", "800.00", "order_rzp_1")
	signature := razorpay.Sign("order_rzp_1", "pay_rzp_1", testProviderSecret)

	first, err := env.settlement.Complete(context.Background(), "order_rzp_1", "pay_rzp_1", signature)
	if err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	if first.AlreadySettled {
		t.Fatalf("first completion should not be marked already settled")
	}
	if first.Order.Status != constants.OrderStatusSettled {
		t.Fatalf("order status want settled got %s", first.Order.Status)
	}
	if !first.Order.FinalAmount.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("final amount want 800.00 got %s", first.Order.FinalAmount.String())
	}
	if len(first.Order.SubOrders) != 1 {
		t.Fatalf("sub orders want 1 got %d", len(first.Order.SubOrders))
	}
	if !first.Order.SubOrders[0].AmountPaid.Equal(decimal.RequireFromString("800.00")) {
		t.Fatalf("amount paid want full captured amount, got %s", first.Order.SubOrders[0].AmountPaid.String())
	}

	second, err := env.settlement.Complete(context.Background(), "order_rzp_1", "pay_rzp_1", signature)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}
	if !second.AlreadySettled {
		t.Fatalf("second completion should be already settled")
	}
	if second.Order.OrderNo != first.Order.OrderNo {
		t.Fatalf("both completions must land on the same order: %s vs %s", first.Order.OrderNo, second.Order.OrderNo)
	}
	if got := countRows(t, env, &models.Order{}); got != 1 {
		t.Fatalf("order count want 1 got %d", got)
	}

	var refreshed models.Coupon
	if err := env.db.First(&refreshed, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if refreshed.UsedCount != 1 {
		t.Fatalf("coupon used count want 1 got %d", refreshed.UsedCount)
	}
	if got := countRows(t, env, &models.CouponUsage{}); got != 1 {
		t.Fatalf("coupon usage rows want 1 got %d", got)
	}
	if got := countRows(t, env, &models.Enrollment{}); got != 1 {
		t.Fatalf("enrollment rows want 1 got %d", got)
	}

	if session.ID == 0 {
		t.Fatalf("session id missing")
	}
}

func TestCompleteSignatureMismatch(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_signature")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Maths Course", "1000.00")

	cart := models.CartSelection{CourseIDs: []uint{1}}
	session := env.createSession(t, user.ID, cart, "", "1000.00", "0.00", "1000.00", "order_rzp_2")

	_, err := env.settlement.Complete(context.Background(), "order_rzp_2", "pay_rzp_2", "deadbeef")
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("want ErrSignatureMismatch got %v", err)
	}
	if got := countRows(t, env, &models.Order{}); got != 0 {
		t.Fatalf("tampered completion must create no orders, got %d", got)
	}

	var refreshed models.CheckoutSession
	if err := env.db.First(&refreshed, session.ID).Error; err != nil {
		t.Fatalf("reload session failed: %v", err)
	}
	if refreshed.Status != constants.SessionStatusFailed {
		t.Fatalf("session status want failed got %s", refreshed.Status)
	}

	// A later attempt with the real signature cannot revive a failed session.
	signature := razorpay.Sign("order_rzp_2", "pay_rzp_2", testProviderSecret)
	_, err = env.settlement.Complete(context.Background(), "order_rzp_2", "pay_rzp_2", signature)
	if !errors.Is(err, ErrSessionUnusable) {
		t.Fatalf("want ErrSessionUnusable got %v", err)
	}
	if got := countRows(t, env, &models.Order{}); got != 0 {
		t.Fatalf("failed session must never settle, got %d orders", got)
	}
}

func TestCompleteUnknownSession(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_unknown")
	_, err := env.settlement.Complete(context.Background(), "order_missing", "pay_x", "sig")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound got %v", err)
	}
}

func TestCompleteProportionalSplit(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_split")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Course A", "100.00")
	env.createItem(t, constants.ProductTypeCourse, 2, "Course B", "100.00")
	env.createItem(t, constants.ProductTypeCourse, 3, "Course C", "100.00")

	// Subtotal 300, 200 discounted, 100 captured: shares must sum exactly.
	cart := models.CartSelection{CourseIDs: []uint{1, 2, 3}}
	env.createSession(t, user.ID, cart, "", "300.00", "200.00", "100.00", "order_rzp_3")
	signature := razorpay.Sign("order_rzp_3", "pay_rzp_3", testProviderSecret)

	result, err := env.settlement.Complete(context.Background(), "order_rzp_3", "pay_rzp_3", signature)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if len(result.Order.SubOrders) != 3 {
		t.Fatalf("sub orders want 3 got %d", len(result.Order.SubOrders))
	}

	sum := decimal.Zero
	for _, sub := range result.Order.SubOrders {
		if sub.PaymentStatus != constants.SubOrderStatusPaid {
			t.Fatalf("sub order %d want paid got %s", sub.ItemID, sub.PaymentStatus)
		}
		sum = sum.Add(sub.AmountPaid.Decimal)
	}
	if !sum.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("shares must sum to captured amount, got %s", sum.String())
	}
	if !result.Order.SubOrders[0].AmountPaid.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("first share want 33.33 got %s", result.Order.SubOrders[0].AmountPaid.String())
	}
	if !result.Order.SubOrders[2].AmountPaid.Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("remainder must land on the last paid line, got %s", result.Order.SubOrders[2].AmountPaid.String())
	}
}

func TestCompletePartialSettlementSlotTaken(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_partial_slot")
	user := env.createUser(t, "buyer@example.com")
	rival := env.createUser(t, "rival@example.com")
	env.createItem(t, constants.ProductTypeGuidance, 1, "1:1 Session", "1500.00")
	slot := &models.GuidanceSlot{ID: 1, MentorName: "Dr. Rao", StartsAt: time.Now().Add(48 * time.Hour), IsBooked: true, BookedByUserID: &rival.ID}
	if err := env.db.Create(slot).Error; err != nil {
		t.Fatalf("create slot failed: %v", err)
	}

	cart := models.CartSelection{GuidanceSlotIDs: []uint{1}}
	env.createSession(t, user.ID, cart, "", "1500.00", "0.00", "1500.00", "order_rzp_4")
	signature := razorpay.Sign("order_rzp_4", "pay_rzp_4", testProviderSecret)

	result, err := env.settlement.Complete(context.Background(), "order_rzp_4", "pay_rzp_4", signature)
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("want ErrPartialSettlement got %v", err)
	}
	if result == nil || result.Order == nil {
		t.Fatalf("partial settlement must still return the order")
	}
	if result.Order.Status != constants.OrderStatusPartiallySettled {
		t.Fatalf("order status want partially_settled got %s", result.Order.Status)
	}
	if len(result.FailedLines) != 1 {
		t.Fatalf("failed lines want 1 got %d", len(result.FailedLines))
	}
	if result.FailedLines[0].Reason != ErrSlotUnavailable.Error() {
		t.Fatalf("failure reason want %q got %q", ErrSlotUnavailable.Error(), result.FailedLines[0].Reason)
	}

	var sub models.SubOrder
	if err := env.db.Where("order_id = ?", result.Order.ID).First(&sub).Error; err != nil {
		t.Fatalf("load sub order failed: %v", err)
	}
	if sub.PaymentStatus != constants.SubOrderStatusPending {
		t.Fatalf("sub order status want pending got %s", sub.PaymentStatus)
	}
	if !sub.FollowUpRequired {
		t.Fatalf("sub order must be flagged for follow-up")
	}
	// The captured money stays on the line; only the access is pending.
	if !sub.AmountPaid.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("amount paid want 1500.00 got %s", sub.AmountPaid.String())
	}
	if got := countRows(t, env, &models.Enrollment{}); got != 0 {
		t.Fatalf("no enrollment should exist for a pending line, got %d", got)
	}
}

func TestCompleteBatchFull(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_batch_full")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeOfflineBatch, 1, "Weekend Batch", "14999.00")
	batch := &models.OfflineBatch{ID: 1, Venue: "Bengaluru", StartsAt: time.Now().AddDate(0, 1, 0), SeatsTotal: 1, SeatsTaken: 1}
	if err := env.db.Create(batch).Error; err != nil {
		t.Fatalf("create batch failed: %v", err)
	}

	cart := models.CartSelection{OfflineBatchIDs: []uint{1}}
	env.createSession(t, user.ID, cart, "", "14999.00", "0.00", "14999.00", "order_rzp_5")
	signature := razorpay.Sign("order_rzp_5", "pay_rzp_5", testProviderSecret)

	result, err := env.settlement.Complete(context.Background(), "order_rzp_5", "pay_rzp_5", signature)
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("want ErrPartialSettlement got %v", err)
	}
	if result.FailedLines[0].Reason != ErrBatchFull.Error() {
		t.Fatalf("failure reason want %q got %q", ErrBatchFull.Error(), result.FailedLines[0].Reason)
	}

	var refreshed models.OfflineBatch
	if err := env.db.First(&refreshed, batch.ID).Error; err != nil {
		t.Fatalf("reload batch failed: %v", err)
	}
	if refreshed.SeatsTaken != 1 {
		t.Fatalf("seats taken must not grow past total, got %d", refreshed.SeatsTaken)
	}
}

func TestCompleteVanishedItemGoesPending(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_vanished")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Course A", "500.00")
	ebook := env.createItem(t, constants.ProductTypeEbook, 1, "Handbook", "300.00")

	cart := models.CartSelection{CourseIDs: []uint{1}, EbookIDs: []uint{1}}
	env.createSession(t, user.ID, cart, "", "800.00", "0.00", "800.00", "order_rzp_6")

	// The ebook is pulled from the catalog after init but before capture.
	if err := env.db.Model(&models.CatalogItem{}).Where("id = ?", ebook.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate item failed: %v", err)
	}

	signature := razorpay.Sign("order_rzp_6", "pay_rzp_6", testProviderSecret)
	result, err := env.settlement.Complete(context.Background(), "order_rzp_6", "pay_rzp_6", signature)
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("want ErrPartialSettlement got %v", err)
	}

	var pending, paid int
	for _, sub := range result.Order.SubOrders {
		switch sub.PaymentStatus {
		case constants.SubOrderStatusPending:
			pending++
			if sub.FailureReason != "item_unavailable" {
				t.Fatalf("vanished line reason want item_unavailable got %s", sub.FailureReason)
			}
		case constants.SubOrderStatusPaid:
			paid++
			// The surviving line absorbs the full captured amount.
			if !sub.AmountPaid.Equal(decimal.RequireFromString("800.00")) {
				t.Fatalf("surviving line want 800.00 got %s", sub.AmountPaid.String())
			}
		}
	}
	if pending != 1 || paid != 1 {
		t.Fatalf("want 1 pending and 1 paid line, got %d/%d", pending, paid)
	}
}

func TestRetryLineRecoversSlot(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_retry")
	user := env.createUser(t, "buyer@example.com")
	rival := env.createUser(t, "rival@example.com")
	env.createItem(t, constants.ProductTypeGuidance, 1, "1:1 Session", "1500.00")
	slot := &models.GuidanceSlot{ID: 1, MentorName: "Dr. Rao", StartsAt: time.Now().Add(48 * time.Hour), IsBooked: true, BookedByUserID: &rival.ID}
	if err := env.db.Create(slot).Error; err != nil {
		t.Fatalf("create slot failed: %v", err)
	}

	cart := models.CartSelection{GuidanceSlotIDs: []uint{1}}
	env.createSession(t, user.ID, cart, "", "1500.00", "0.00", "1500.00", "order_rzp_7")
	signature := razorpay.Sign("order_rzp_7", "pay_rzp_7", testProviderSecret)

	result, err := env.settlement.Complete(context.Background(), "order_rzp_7", "pay_rzp_7", signature)
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("want ErrPartialSettlement got %v", err)
	}
	subOrderID := result.FailedLines[0].SubOrderID

	// The rival cancels; the slot frees up and the follow-up can land.
	if err := env.db.Model(&models.GuidanceSlot{}).Where("id = ?", slot.ID).
		Updates(map[string]interface{}{"is_booked": false, "booked_by_user_id": nil}).Error; err != nil {
		t.Fatalf("free slot failed: %v", err)
	}

	if err := env.settlement.RetryLine(context.Background(), subOrderID); err != nil {
		t.Fatalf("retry line failed: %v", err)
	}

	var sub models.SubOrder
	if err := env.db.First(&sub, subOrderID).Error; err != nil {
		t.Fatalf("reload sub order failed: %v", err)
	}
	if sub.PaymentStatus != constants.SubOrderStatusPaid {
		t.Fatalf("recovered line want paid got %s", sub.PaymentStatus)
	}
	if sub.FollowUpRequired {
		t.Fatalf("recovered line must clear the follow-up flag")
	}

	var order models.Order
	if err := env.db.First(&order, result.Order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if order.Status != constants.OrderStatusSettled {
		t.Fatalf("order should return to settled once all lines clear, got %s", order.Status)
	}

	var refreshedSlot models.GuidanceSlot
	if err := env.db.First(&refreshedSlot, slot.ID).Error; err != nil {
		t.Fatalf("reload slot failed: %v", err)
	}
	if !refreshedSlot.IsBooked || refreshedSlot.BookedByUserID == nil || *refreshedSlot.BookedByUserID != user.ID {
		t.Fatalf("slot should now be booked by the buyer")
	}
	if got := countRows(t, env, &models.Enrollment{}); got != 1 {
		t.Fatalf("enrollment rows want 1 got %d", got)
	}
}

func TestRetryFollowUpsSweep(t *testing.T) {
	// With the queue disabled no retry task is ever enqueued; the sweep has
	// to find pending lines straight from the database.
	env := newServiceTestEnv(t, "settlement_follow_up_sweep")
	user := env.createUser(t, "buyer@example.com")
	rival := env.createUser(t, "rival@example.com")

	env.createItem(t, constants.ProductTypeGuidance, 1, "1:1 Session", "1500.00")
	slot := &models.GuidanceSlot{ID: 1, MentorName: "Dr. Rao", StartsAt: time.Now().Add(48 * time.Hour), IsBooked: true, BookedByUserID: &rival.ID}
	if err := env.db.Create(slot).Error; err != nil {
		t.Fatalf("create slot failed: %v", err)
	}

	env.createItem(t, constants.ProductTypeOfflineBatch, 1, "Weekend Batch", "5000.00")
	batch := &models.OfflineBatch{ID: 1, Venue: "Bengaluru", StartsAt: time.Now().AddDate(0, 1, 0), SeatsTotal: 1, SeatsTaken: 1}
	if err := env.db.Create(batch).Error; err != nil {
		t.Fatalf("create batch failed: %v", err)
	}

	env.createSession(t, user.ID, models.CartSelection{GuidanceSlotIDs: []uint{1}}, "", "1500.00", "0.00", "1500.00", "order_rzp_s1")
	env.createSession(t, user.ID, models.CartSelection{OfflineBatchIDs: []uint{1}}, "", "5000.00", "0.00", "5000.00", "order_rzp_s2")

	result1, err := env.settlement.Complete(context.Background(), "order_rzp_s1", "pay_rzp_s1", razorpay.Sign("order_rzp_s1", "pay_rzp_s1", testProviderSecret))
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("slot settlement want ErrPartialSettlement got %v", err)
	}
	slotLineID := result1.FailedLines[0].SubOrderID
	result2, err := env.settlement.Complete(context.Background(), "order_rzp_s2", "pay_rzp_s2", razorpay.Sign("order_rzp_s2", "pay_rzp_s2", testProviderSecret))
	if !errors.Is(err, ErrPartialSettlement) {
		t.Fatalf("batch settlement want ErrPartialSettlement got %v", err)
	}
	batchLineID := result2.FailedLines[0].SubOrderID

	// The rival cancels the slot; the batch stays full.
	if err := env.db.Model(&models.GuidanceSlot{}).Where("id = ?", slot.ID).
		Updates(map[string]interface{}{"is_booked": false, "booked_by_user_id": nil}).Error; err != nil {
		t.Fatalf("free slot failed: %v", err)
	}

	recovered, err := env.settlement.RetryFollowUps(context.Background(), 50)
	if err != nil {
		t.Fatalf("follow-up sweep failed: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("recovered lines want 1 got %d", recovered)
	}

	var slotLine models.SubOrder
	if err := env.db.First(&slotLine, slotLineID).Error; err != nil {
		t.Fatalf("reload slot line failed: %v", err)
	}
	if slotLine.PaymentStatus != constants.SubOrderStatusPaid || slotLine.FollowUpRequired {
		t.Fatalf("slot line should recover, got status %s follow_up %v", slotLine.PaymentStatus, slotLine.FollowUpRequired)
	}
	var slotOrder models.Order
	if err := env.db.First(&slotOrder, result1.Order.ID).Error; err != nil {
		t.Fatalf("reload slot order failed: %v", err)
	}
	if slotOrder.Status != constants.OrderStatusSettled {
		t.Fatalf("slot order should settle after the sweep, got %s", slotOrder.Status)
	}

	// The full batch is unrecoverable; its line keeps the flag and the
	// sweep does not error out over it.
	var batchLine models.SubOrder
	if err := env.db.First(&batchLine, batchLineID).Error; err != nil {
		t.Fatalf("reload batch line failed: %v", err)
	}
	if batchLine.PaymentStatus != constants.SubOrderStatusPending || !batchLine.FollowUpRequired {
		t.Fatalf("batch line should stay pending, got status %s follow_up %v", batchLine.PaymentStatus, batchLine.FollowUpRequired)
	}

	// A second sweep finds nothing new to clear.
	recovered, err = env.settlement.RetryFollowUps(context.Background(), 50)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if recovered != 0 {
		t.Fatalf("second sweep recovered want 0 got %d", recovered)
	}
}

func TestSettleFreeCreatesFreeOrder(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_free")
	user := env.createUser(t, "buyer@example.com")
	env.createFreeItem(t, constants.ProductTypeEbook, 1, "Free Notes")

	cart := models.CartSelection{EbookIDs: []uint{1}}
	result, err := env.settlement.SettleFree(context.Background(), cart, "", user.ID)
	if err != nil {
		t.Fatalf("settle free failed: %v", err)
	}
	if result.Order.Status != constants.OrderStatusSettled {
		t.Fatalf("order status want settled got %s", result.Order.Status)
	}
	if !result.Order.FinalAmount.IsZero() {
		t.Fatalf("free order final amount want 0 got %s", result.Order.FinalAmount.String())
	}
	if result.Order.SubOrders[0].PaymentStatus != constants.SubOrderStatusFree {
		t.Fatalf("sub order status want free got %s", result.Order.SubOrders[0].PaymentStatus)
	}
	if got := countRows(t, env, &models.Enrollment{}); got != 1 {
		t.Fatalf("enrollment rows want 1 got %d", got)
	}
	// No session and no provider reference for a free settlement.
	if got := countRows(t, env, &models.CheckoutSession{}); got != 0 {
		t.Fatalf("free settlement must not create sessions, got %d", got)
	}
}

func TestSettleFreeRejectsPaidCart(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_free_paid")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Course", "100.00")

	_, err := env.settlement.SettleFree(context.Background(), models.CartSelection{CourseIDs: []uint{1}}, "", user.ID)
	if err == nil {
		t.Fatalf("settle free must refuse a cart with a positive total")
	}
}

func TestExpireSessions(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_expire")
	user := env.createUser(t, "buyer@example.com")
	env.createItem(t, constants.ProductTypeCourse, 1, "Course", "100.00")

	cart := models.CartSelection{CourseIDs: []uint{1}}
	session := env.createSession(t, user.ID, cart, "", "100.00", "0.00", "100.00", "order_rzp_8")
	if err := env.db.Model(&models.CheckoutSession{}).Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate session failed: %v", err)
	}

	affected, err := env.settlement.ExpireSessions(time.Now())
	if err != nil {
		t.Fatalf("expire sessions failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expired sessions want 1 got %d", affected)
	}

	signature := razorpay.Sign("order_rzp_8", "pay_rzp_8", testProviderSecret)
	_, err = env.settlement.Complete(context.Background(), "order_rzp_8", "pay_rzp_8", signature)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("want ErrSessionExpired got %v", err)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	env := newServiceTestEnv(t, "settlement_ownership")
	user := env.createUser(t, "buyer@example.com")
	other := env.createUser(t, "other@example.com")
	env.createFreeItem(t, constants.ProductTypeEbook, 1, "Free Notes")

	result, err := env.settlement.SettleFree(context.Background(), models.CartSelection{EbookIDs: []uint{1}}, "", user.ID)
	if err != nil {
		t.Fatalf("settle free failed: %v", err)
	}

	if _, err := env.settlement.GetOrder(result.Order.ID, user.ID); err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}
	if _, err := env.settlement.GetOrder(result.Order.ID, other.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign fetch want ErrOrderNotFound got %v", err)
	}
}

func TestDistributeAmountRemainder(t *testing.T) {
	lines := []PriceableLine{
		{UnitPrice: mustMoney("100.00")},
		{UnitPrice: mustMoney("100.00")},
		{UnitPrice: mustMoney("100.00")},
		{IsFree: true, UnitPrice: mustMoney("0.00")},
	}
	shares := distributeAmount(decimal.RequireFromString("100.00"), lines)
	if !shares[0].Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("share 0 want 33.33 got %s", shares[0].String())
	}
	if !shares[2].Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("last paid share want 33.34 got %s", shares[2].String())
	}
	if !shares[3].IsZero() {
		t.Fatalf("free line share want 0 got %s", shares[3].String())
	}

	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share)
	}
	if !sum.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("shares must sum to total, got %s", sum.String())
	}
}

func mustMoney(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
