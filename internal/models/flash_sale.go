package models

import (
	"time"

	"gorm.io/gorm"
)

// FlashSale is a time-boxed price override for a single catalog item.
type FlashSale struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	ProductType   string         `gorm:"index:idx_flash_type_item;not null" json:"product_type"`
	ItemID        uint           `gorm:"index:idx_flash_type_item;not null" json:"item_id"` // per-type item id
	DiscountPrice Money          `gorm:"type:decimal(20,2);not null" json:"discount_price"`
	StartsAt      time.Time      `gorm:"index;not null" json:"starts_at"`
	EndsAt        time.Time      `gorm:"index;not null" json:"ends_at"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (FlashSale) TableName() string {
	return "flash_sales"
}

// ActiveAt reports whether the sale applies at the given instant.
func (f FlashSale) ActiveAt(now time.Time) bool {
	if !f.IsActive {
		return false
	}
	return !now.Before(f.StartsAt) && now.Before(f.EndsAt)
}
