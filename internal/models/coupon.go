package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is a discount code.
type Coupon struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // primary key
	Code          string         `gorm:"uniqueIndex;not null" json:"code"`                          // coupon code
	DiscountType  string         `gorm:"not null" json:"discount_type"`                             // fixed / percent
	DiscountValue Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`         // amount or percentage
	MinAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`   // minimum cart subtotal
	MaxDiscount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // cap for percent coupons (0 = uncapped)
	UsageLimit    int            `gorm:"not null;default:0" json:"usage_limit"`                     // total redemptions (0 = unlimited)
	UsedCount     int            `gorm:"not null;default:0" json:"used_count"`                      // redemptions so far
	ApplicableTo  string         `gorm:"not null;default:all" json:"applicable_to"`                 // product type tag or "all"
	TargetUser    string         `gorm:"not null;default:all" json:"target_user"`                   // all / new_user / specific_user
	TargetUserIDs UintList       `gorm:"type:text" json:"target_user_ids"`                          // JSON id array for specific_user
	ValidFrom     *time.Time     `gorm:"index" json:"valid_from"`
	ValidUntil    *time.Time     `gorm:"index" json:"valid_until"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Coupon) TableName() string {
	return "coupons"
}

// WithinValidity reports whether now falls inside the validity window.
func (c Coupon) WithinValidity(now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}
