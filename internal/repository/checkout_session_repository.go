package repository

import (
	"errors"
	"time"

	"github.com/edukart-next/internal/constants"
	"github.com/edukart-next/internal/models"

	"gorm.io/gorm"
)

// CheckoutSessionRepository is the checkout session data access interface.
type CheckoutSessionRepository interface {
	Create(session *models.CheckoutSession) error
	GetBySessionNo(sessionNo string) (*models.CheckoutSession, error)
	GetByProviderOrderID(providerOrderID string) (*models.CheckoutSession, error)
	Update(session *models.CheckoutSession) error
	ClaimForSettlement(id uint) (bool, error)
	AttachOrder(id uint, orderID uint) error
	MarkFailed(id uint) error
	ExpireOverdue(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormCheckoutSessionRepository
}

// GormCheckoutSessionRepository is the GORM implementation.
type GormCheckoutSessionRepository struct {
	db *gorm.DB
}

// NewCheckoutSessionRepository creates a checkout session repository.
func NewCheckoutSessionRepository(db *gorm.DB) *GormCheckoutSessionRepository {
	return &GormCheckoutSessionRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormCheckoutSessionRepository) WithTx(tx *gorm.DB) *GormCheckoutSessionRepository {
	if tx == nil {
		return r
	}
	return &GormCheckoutSessionRepository{db: tx}
}

// Create inserts a session.
func (r *GormCheckoutSessionRepository) Create(session *models.CheckoutSession) error {
	return r.db.Create(session).Error
}

// GetBySessionNo fetches a session by its number.
func (r *GormCheckoutSessionRepository) GetBySessionNo(sessionNo string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.Where("session_no = ?", sessionNo).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetByProviderOrderID fetches a session by the provider's order id.
func (r *GormCheckoutSessionRepository) GetByProviderOrderID(providerOrderID string) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	if err := r.db.Where("provider_order_id = ?", providerOrderID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Update saves a session.
func (r *GormCheckoutSessionRepository) Update(session *models.CheckoutSession) error {
	return r.db.Save(session).Error
}

// ClaimForSettlement flips a created session to settled. Exactly one caller
// wins the row; everyone else gets false and must read back the winner's
// result.
func (r *GormCheckoutSessionRepository) ClaimForSettlement(id uint) (bool, error) {
	result := r.db.Model(&models.CheckoutSession{}).
		Where("id = ? AND status = ?", id, constants.SessionStatusCreated).
		Update("status", constants.SessionStatusSettled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AttachOrder links the settled order to its session.
func (r *GormCheckoutSessionRepository) AttachOrder(id uint, orderID uint) error {
	return r.db.Model(&models.CheckoutSession{}).
		Where("id = ?", id).
		Update("order_id", orderID).Error
}

// MarkFailed flips a created session to failed, making it unusable.
func (r *GormCheckoutSessionRepository) MarkFailed(id uint) error {
	return r.db.Model(&models.CheckoutSession{}).
		Where("id = ? AND status = ?", id, constants.SessionStatusCreated).
		Update("status", constants.SessionStatusFailed).Error
}

// ExpireOverdue marks overdue created sessions expired and returns how many
// rows changed.
func (r *GormCheckoutSessionRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&models.CheckoutSession{}).
		Where("status = ? AND expires_at < ?", constants.SessionStatusCreated, now).
		Update("status", constants.SessionStatusExpired)
	return result.RowsAffected, result.Error
}
