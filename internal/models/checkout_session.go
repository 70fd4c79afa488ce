package models

import (
	"encoding/json"
	"time"

	"github.com/edukart-next/internal/constants"
)

// CartSelection is the heterogeneous cart: one id set per product type.
// Id spaces are independent across types, so the same numeric id may
// legally appear in two different sets.
type CartSelection struct {
	EbookIDs        []uint `json:"ebook_ids"`
	WebinarIDs      []uint `json:"webinar_ids"`
	GuidanceSlotIDs []uint `json:"guidance_slot_ids"`
	MentorshipIDs   []uint `json:"mentorship_ids"`
	CourseIDs       []uint `json:"course_ids"`
	BundleIDs       []uint `json:"bundle_ids"`
	OfflineBatchIDs []uint `json:"offline_batch_ids"`
}

// CartEntry is one (product type, item id) pair flattened from a selection.
type CartEntry struct {
	ProductType string `json:"product_type"`
	ItemID      uint   `json:"item_id"`
}

// Entries flattens the selection in catalog order. Duplicate ids within one
// set are dropped silently, keeping the first occurrence.
func (s CartSelection) Entries() []CartEntry {
	sets := []struct {
		productType string
		ids         []uint
	}{
		{constants.ProductTypeEbook, s.EbookIDs},
		{constants.ProductTypeWebinar, s.WebinarIDs},
		{constants.ProductTypeGuidance, s.GuidanceSlotIDs},
		{constants.ProductTypeMentorship, s.MentorshipIDs},
		{constants.ProductTypeCourse, s.CourseIDs},
		{constants.ProductTypeBundle, s.BundleIDs},
		{constants.ProductTypeOfflineBatch, s.OfflineBatchIDs},
	}

	var entries []CartEntry
	for _, set := range sets {
		seen := make(map[uint]struct{}, len(set.ids))
		for _, id := range set.ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			entries = append(entries, CartEntry{ProductType: set.productType, ItemID: id})
		}
	}
	return entries
}

// IsEmpty reports whether every set is empty after dedupe.
func (s CartSelection) IsEmpty() bool {
	return len(s.Entries()) == 0
}

// CheckoutSession is the persisted internal reference for one payment
// handshake. Single use: created once, then settled, failed, or expired.
type CheckoutSession struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	SessionNo       string    `gorm:"uniqueIndex;not null" json:"session_no"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	CartJSON        string    `gorm:"type:text;not null" json:"-"` // CartSelection snapshot
	CouponCode      string    `json:"coupon_code"`
	Subtotal        Money     `gorm:"type:decimal(20,2);not null" json:"subtotal"`
	DiscountAmount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`
	Amount          Money     `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency        string    `gorm:"not null" json:"currency"`
	ProviderOrderID string    `gorm:"uniqueIndex" json:"provider_order_id"`
	ProviderKey     string    `json:"provider_key"`
	Status          string    `gorm:"index;not null;default:created" json:"status"` // created/settled/failed/expired
	OrderID         *uint     `gorm:"index" json:"order_id"`
	ExpiresAt       time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}

// Cart decodes the stored cart snapshot.
func (s CheckoutSession) Cart() (CartSelection, error) {
	var cart CartSelection
	if s.CartJSON == "" {
		return cart, nil
	}
	err := json.Unmarshal([]byte(s.CartJSON), &cart)
	return cart, err
}

// EncodeCart snapshots the cart into the session.
func (s *CheckoutSession) EncodeCart(cart CartSelection) error {
	b, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	s.CartJSON = string(b)
	return nil
}
