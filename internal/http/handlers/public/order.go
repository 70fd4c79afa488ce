package public

import (
	"strconv"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/http/response"
	"github.com/edukart-next/internal/models"
	"github.com/edukart-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// subOrderPayload is one line in the per-type groups of an order reply.
type subOrderPayload struct {
	ID               uint         `json:"id"`
	ItemID           uint         `json:"item_id"`
	Title            string       `json:"title"`
	UnitPrice        models.Money `json:"unit_price"`
	AmountPaid       models.Money `json:"amount_paid"`
	PaymentStatus    string       `json:"payment_status"`
	FollowUpRequired bool         `json:"follow_up_required"`
	FailureReason    string       `json:"failure_reason,omitempty"`
}

// orderPayload splits the tagged sub-order rows into the per-type groups
// clients consume.
type orderPayload struct {
	ID                uint              `json:"id"`
	OrderNo           string            `json:"order_no"`
	Status            string            `json:"status"`
	CouponCode        string            `json:"coupon_code,omitempty"`
	DiscountAmount    models.Money      `json:"discount_amount"`
	TotalAmount       models.Money      `json:"total_amount"`
	FinalAmount       models.Money      `json:"final_amount"`
	ProviderOrderID   string            `json:"provider_order_id,omitempty"`
	ProviderPaymentID string            `json:"provider_payment_id,omitempty"`
	CreatedAt         int64             `json:"created_at"`
	EbookItems        []subOrderPayload `json:"ebook_items"`
	WebinarItems      []subOrderPayload `json:"webinar_items"`
	GuidanceBookings  []subOrderPayload `json:"guidance_bookings"`
	MentorshipOrders  []subOrderPayload `json:"mentorship_orders"`
	CourseOrders      []subOrderPayload `json:"course_orders"`
	BundleOrders      []subOrderPayload `json:"bundle_orders"`
	OfflineBatchSeats []subOrderPayload `json:"offline_batch_seats"`
}

func buildOrderPayload(order *models.Order) *orderPayload {
	if order == nil {
		return nil
	}
	payload := &orderPayload{
		ID:                order.ID,
		OrderNo:           order.OrderNo,
		Status:            order.Status,
		CouponCode:        order.CouponCode,
		DiscountAmount:    order.DiscountAmount,
		TotalAmount:       order.TotalAmount,
		FinalAmount:       order.FinalAmount,
		ProviderOrderID:   order.ProviderOrderID,
		ProviderPaymentID: order.ProviderPaymentID,
		CreatedAt:         order.CreatedAt.Unix(),
		EbookItems:        []subOrderPayload{},
		WebinarItems:      []subOrderPayload{},
		GuidanceBookings:  []subOrderPayload{},
		MentorshipOrders:  []subOrderPayload{},
		CourseOrders:      []subOrderPayload{},
		BundleOrders:      []subOrderPayload{},
		OfflineBatchSeats: []subOrderPayload{},
	}
	for _, sub := range order.SubOrders {
		line := subOrderPayload{
			ID:               sub.ID,
			ItemID:           sub.ItemID,
			Title:            sub.Title,
			UnitPrice:        sub.UnitPrice,
			AmountPaid:       sub.AmountPaid,
			PaymentStatus:    sub.PaymentStatus,
			FollowUpRequired: sub.FollowUpRequired,
			FailureReason:    sub.FailureReason,
		}
		switch sub.ProductType {
		case constants.ProductTypeEbook:
			payload.EbookItems = append(payload.EbookItems, line)
		case constants.ProductTypeWebinar:
			payload.WebinarItems = append(payload.WebinarItems, line)
		case constants.ProductTypeGuidance:
			payload.GuidanceBookings = append(payload.GuidanceBookings, line)
		case constants.ProductTypeMentorship:
			payload.MentorshipOrders = append(payload.MentorshipOrders, line)
		case constants.ProductTypeCourse:
			payload.CourseOrders = append(payload.CourseOrders, line)
		case constants.ProductTypeBundle:
			payload.BundleOrders = append(payload.BundleOrders, line)
		case constants.ProductTypeOfflineBatch:
			payload.OfflineBatchSeats = append(payload.OfflineBatchSeats, line)
		}
	}
	return payload
}

// ListOrders returns the caller's settled orders.
// GET /api/v1/orders
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	orders, total, err := h.SettlementService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_list_failed", err)
		return
	}

	payloads := make([]*orderPayload, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, buildOrderPayload(&orders[i]))
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, payloads, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetOrder returns one of the caller's orders.
// GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", err)
		return
	}

	order, err := h.SettlementService.GetOrder(uint(id), userID)
	if err != nil {
		respondWithMappedError(c, err, orderQueryErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, buildOrderPayload(order))
}
