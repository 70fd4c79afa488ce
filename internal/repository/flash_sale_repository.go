package repository

import (
	"errors"
	"time"

	"github.com/edukart-next/internal/models"

	"gorm.io/gorm"
)

// FlashSaleRepository is the flash sale data access interface.
type FlashSaleRepository interface {
	GetActiveForItem(productType string, itemID uint, now time.Time) (*models.FlashSale, error)
	Create(sale *models.FlashSale) error
	Update(sale *models.FlashSale) error
	WithTx(tx *gorm.DB) *GormFlashSaleRepository
}

// GormFlashSaleRepository is the GORM implementation.
type GormFlashSaleRepository struct {
	db *gorm.DB
}

// NewFlashSaleRepository creates a flash sale repository.
func NewFlashSaleRepository(db *gorm.DB) *GormFlashSaleRepository {
	return &GormFlashSaleRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormFlashSaleRepository) WithTx(tx *gorm.DB) *GormFlashSaleRepository {
	if tx == nil {
		return r
	}
	return &GormFlashSaleRepository{db: tx}
}

// GetActiveForItem fetches the sale in effect for an item at the given
// instant. When several overlap, the latest-starting one wins.
func (r *GormFlashSaleRepository) GetActiveForItem(productType string, itemID uint, now time.Time) (*models.FlashSale, error) {
	var sale models.FlashSale
	if err := r.db.
		Where("product_type = ? AND item_id = ?", productType, itemID).
		Where("is_active = ?", true).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Order("starts_at desc").
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// Create inserts a flash sale.
func (r *GormFlashSaleRepository) Create(sale *models.FlashSale) error {
	return r.db.Create(sale).Error
}

// Update saves a flash sale.
func (r *GormFlashSaleRepository) Update(sale *models.FlashSale) error {
	return r.db.Save(sale).Error
}
