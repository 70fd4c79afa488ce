package models

import "time"

// CouponUsage records one redemption. Written inside the settlement
// transaction so the count and the order commit together.
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CouponID       uint      `gorm:"index;not null" json:"coupon_id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	OrderID        uint      `gorm:"index;not null" json:"order_id"`
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null" json:"discount_amount"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
