package models

import "time"

// SubOrder is one product line of a settled order. All seven product types
// share this table, discriminated by ProductType; the per-type grouping in
// API responses is assembled from it.
type SubOrder struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OrderID          uint      `gorm:"index;not null" json:"order_id"`
	ProductType      string    `gorm:"index;not null" json:"product_type"`
	ItemID           uint      `gorm:"index;not null" json:"item_id"` // per-type item id
	Title            string    `gorm:"not null" json:"title"`         // snapshot at settlement time
	UnitPrice        Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	AmountPaid       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount_paid"`
	PaymentStatus    string    `gorm:"index;not null" json:"payment_status"` // paid / free / pending
	FollowUpRequired bool      `gorm:"not null;default:false" json:"follow_up_required"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (SubOrder) TableName() string {
	return "sub_orders"
}
