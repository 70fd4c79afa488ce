package models

import "time"

// Enrollment grants a user access to one settled line. Downstream learning
// systems read these rows; nothing here renders content.
type Enrollment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index:idx_enroll_user_item;not null" json:"user_id"`
	ProductType string    `gorm:"index:idx_enroll_user_item;not null" json:"product_type"`
	ItemID      uint      `gorm:"index:idx_enroll_user_item;not null" json:"item_id"`
	OrderID     uint      `gorm:"index;not null" json:"order_id"`
	SubOrderID  uint      `gorm:"index;not null" json:"sub_order_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (Enrollment) TableName() string {
	return "enrollments"
}
