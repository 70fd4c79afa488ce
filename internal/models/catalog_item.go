package models

import (
	"time"

	"gorm.io/gorm"
)

// CatalogItem is one sellable item of any product type. Content itself
// (files, sessions, curriculum) is hosted elsewhere; this row carries the
// pricing contract only.
type CatalogItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                           // primary key
	ProductType string         `gorm:"index:idx_catalog_type_ref;not null" json:"product_type"` // ebook/webinar/guidance/mentorship/course/bundle/offline_batch
	RefID       uint           `gorm:"index:idx_catalog_type_ref;not null" json:"ref_id"`       // id within the product type's own id space
	Title       string         `gorm:"not null" json:"title"`
	BasePrice   Money          `gorm:"type:decimal(20,2);not null" json:"base_price"`
	SalePrice   *Money         `gorm:"type:decimal(20,2)" json:"sale_price"` // optional discounted list price
	IsFree      bool           `gorm:"not null;default:false" json:"is_free"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (CatalogItem) TableName() string {
	return "catalog_items"
}
