package models

import "time"

// OfflineBatch is an in-person cohort with finite seats. Seat take is a
// guarded increment; a full batch refuses further enrollments.
type OfflineBatch struct {
	ID         uint      `gorm:"primarykey" json:"id"` // also the cart item id for offline batch lines
	Venue      string    `gorm:"not null" json:"venue"`
	StartsAt   time.Time `gorm:"index;not null" json:"starts_at"`
	SeatsTotal int       `gorm:"not null" json:"seats_total"`
	SeatsTaken int       `gorm:"not null;default:0" json:"seats_taken"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (OfflineBatch) TableName() string {
	return "offline_batches"
}
