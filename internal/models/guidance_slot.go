package models

import "time"

// GuidanceSlot is a one-on-one session slot. A slot is a contended
// resource: booking flips IsBooked under a guarded update, so two settling
// orders can never both take it.
type GuidanceSlot struct {
	ID             uint      `gorm:"primarykey" json:"id"` // also the cart item id for guidance lines
	MentorName     string    `gorm:"not null" json:"mentor_name"`
	StartsAt       time.Time `gorm:"index;not null" json:"starts_at"`
	IsBooked       bool      `gorm:"not null;default:false" json:"is_booked"`
	BookedByUserID *uint     `gorm:"index" json:"booked_by_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (GuidanceSlot) TableName() string {
	return "guidance_slots"
}
