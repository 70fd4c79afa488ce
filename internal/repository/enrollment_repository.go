package repository

import (
	"errors"

	"github.com/edukart-next/internal/models"

	"gorm.io/gorm"
)

// EnrollmentRepository handles access grants and the contended resources
// behind them (guidance slots, offline batch seats).
type EnrollmentRepository interface {
	Create(enrollment *models.Enrollment) error
	Exists(userID uint, productType string, itemID uint) (bool, error)
	ListByUser(userID uint) ([]models.Enrollment, error)
	GetSlot(id uint) (*models.GuidanceSlot, error)
	BookSlot(slotID, userID uint) (bool, error)
	GetBatch(id uint) (*models.OfflineBatch, error)
	TakeSeat(batchID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormEnrollmentRepository
}

// GormEnrollmentRepository is the GORM implementation.
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormEnrollmentRepository) WithTx(tx *gorm.DB) *GormEnrollmentRepository {
	if tx == nil {
		return r
	}
	return &GormEnrollmentRepository{db: tx}
}

// Create inserts an access grant.
func (r *GormEnrollmentRepository) Create(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}

// Exists reports whether the user already holds a grant for the item.
func (r *GormEnrollmentRepository) Exists(userID uint, productType string, itemID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Enrollment{}).
		Where("user_id = ? AND product_type = ? AND item_id = ?", userID, productType, itemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser fetches a user's access grants.
func (r *GormEnrollmentRepository) ListByUser(userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.Where("user_id = ?", userID).
		Order("id desc").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// GetSlot fetches a guidance slot.
func (r *GormEnrollmentRepository) GetSlot(id uint) (*models.GuidanceSlot, error) {
	var slot models.GuidanceSlot
	if err := r.db.First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// BookSlot takes a guidance slot for a user. The guard on is_booked means
// only one settlement can ever win the slot.
func (r *GormEnrollmentRepository) BookSlot(slotID, userID uint) (bool, error) {
	result := r.db.Model(&models.GuidanceSlot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Updates(map[string]interface{}{
			"is_booked":         true,
			"booked_by_user_id": userID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetBatch fetches an offline batch.
func (r *GormEnrollmentRepository) GetBatch(id uint) (*models.OfflineBatch, error) {
	var batch models.OfflineBatch
	if err := r.db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// TakeSeat claims one seat in a batch, guarded by the seat cap.
func (r *GormEnrollmentRepository) TakeSeat(batchID uint) (bool, error) {
	result := r.db.Model(&models.OfflineBatch{}).
		Where("id = ? AND seats_taken < seats_total", batchID).
		UpdateColumn("seats_taken", gorm.Expr("seats_taken + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
