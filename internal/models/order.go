package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the settled purchase record. Created only after the provider
// handshake verifies (or for zero-total carts), never for attempts.
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID            uint           `gorm:"index;not null" json:"user_id"`
	CouponCode        string         `json:"coupon_code"`
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	TotalAmount       Money          `gorm:"type:decimal(20,2);not null" json:"total_amount"` // cart subtotal before discount
	FinalAmount       Money          `gorm:"type:decimal(20,2);not null" json:"final_amount"` // captured amount
	ProviderOrderID   string         `gorm:"index" json:"provider_order_id"`
	ProviderPaymentID string         `gorm:"index" json:"provider_payment_id"`
	Status            string         `gorm:"index;not null" json:"status"` // settled / partially_settled
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	SubOrders []SubOrder `gorm:"foreignKey:OrderID" json:"sub_orders"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
