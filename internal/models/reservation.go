package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusRejected  ReservationStatus = "REJECTED"
	StatusCanceled  ReservationStatus = "CANCELED"
)

// IsActive reports whether a reservation in this status counts toward the
// no-overlap invariant. REJECTED and CANCELED rows are kept for history but
// never block new bookings.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions exist out of this status.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCanceled
}

type Reservation struct {
	ID         string            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string            `gorm:"type:uuid;not null;index" json:"user_id"`
	RoomID     uint              `gorm:"not null;index" json:"room_id"`
	StartAt    time.Time         `gorm:"not null" json:"start_at"`
	EndAt      time.Time         `gorm:"not null" json:"end_at"`
	Status     ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Reason     *string           `gorm:"type:text" json:"reason,omitempty"`
	IsNotified bool              `gorm:"not null;default:false" json:"is_notified"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
