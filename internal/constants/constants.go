package constants

// Product type constants
const (
	ProductTypeEbook        = "ebook"
	ProductTypeWebinar      = "webinar"
	ProductTypeGuidance     = "guidance"
	ProductTypeMentorship   = "mentorship"
	ProductTypeCourse       = "course"
	ProductTypeBundle       = "bundle"
	ProductTypeOfflineBatch = "offline_batch"
)

// Every sellable product type, in catalog display order.
var ProductTypes = []string{
	ProductTypeEbook,
	ProductTypeWebinar,
	ProductTypeGuidance,
	ProductTypeMentorship,
	ProductTypeCourse,
	ProductTypeBundle,
	ProductTypeOfflineBatch,
}

// Coupon type constants
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// Coupon applicability constants
const (
	CouponApplicableAll = "all"
)

// Coupon target user constants
const (
	CouponTargetAll          = "all"
	CouponTargetNewUser      = "new_user"
	CouponTargetSpecificUser = "specific_user"
)

// Checkout session status constants
const (
	SessionStatusCreated = "created"
	SessionStatusSettled = "settled"
	SessionStatusFailed  = "failed"
	SessionStatusExpired = "expired"
)

// Order status constants
const (
	OrderStatusSettled          = "settled"
	OrderStatusPartiallySettled = "partially_settled"
)

// Sub-order payment status constants
const (
	SubOrderStatusPaid    = "paid"
	SubOrderStatusFree    = "free"
	SubOrderStatusPending = "pending"
)

// Queue constants
const (
	QueueDefault            = "default"
	TaskSessionExpire       = "checkout:session_expire"
	TaskSettlementRetryLine = "settlement:retry_line"
)

// Cache default constants
const (
	RedisPrefixDefault = "ek"
)

// Currency constants
const (
	SiteCurrencyDefault = "INR"
)
