package repository

import (
	"errors"

	"github.com/edukart-next/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository is the catalog item data access interface.
type CatalogRepository interface {
	GetByID(id uint) (*models.CatalogItem, error)
	GetByTypeAndItem(productType string, itemID uint) (*models.CatalogItem, error)
	ListByType(productType string, itemIDs []uint) ([]models.CatalogItem, error)
	List(filter CatalogListFilter) ([]models.CatalogItem, int64, error)
	Create(item *models.CatalogItem) error
	Update(item *models.CatalogItem) error
	WithTx(tx *gorm.DB) *GormCatalogRepository
}

// GormCatalogRepository is the GORM implementation.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormCatalogRepository) WithTx(tx *gorm.DB) *GormCatalogRepository {
	if tx == nil {
		return r
	}
	return &GormCatalogRepository{db: tx}
}

// GetByID fetches a catalog item by primary key.
func (r *GormCatalogRepository) GetByID(id uint) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByTypeAndItem fetches a catalog item by product type and per-type id.
func (r *GormCatalogRepository) GetByTypeAndItem(productType string, itemID uint) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.Where("product_type = ? AND ref_id = ?", productType, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByType batch-fetches catalog items of one product type.
func (r *GormCatalogRepository) ListByType(productType string, itemIDs []uint) ([]models.CatalogItem, error) {
	if len(itemIDs) == 0 {
		return []models.CatalogItem{}, nil
	}
	var items []models.CatalogItem
	if err := r.db.Where("product_type = ? AND ref_id IN ?", productType, itemIDs).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List fetches a catalog page.
func (r *GormCatalogRepository) List(filter CatalogListFilter) ([]models.CatalogItem, int64, error) {
	query := r.db.Model(&models.CatalogItem{})

	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.CatalogItem
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a catalog item.
func (r *GormCatalogRepository) Create(item *models.CatalogItem) error {
	return r.db.Create(item).Error
}

// Update saves a catalog item.
func (r *GormCatalogRepository) Update(item *models.CatalogItem) error {
	return r.db.Save(item).Error
}
