package model

import (
	"time"

	"github.com/google/uuid"
)

// slots
//
// IsAvailable is the single source of truth for bookability. It flips to false
// exactly when an appointment claims the slot and back to true when that
// appointment is cancelled, rescheduled away, or deleted. Both writes happen in
// the same transaction as the appointment write, never on their own.
type Slot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ScheduleID uuid.UUID `gorm:"type:uuid;not null;index"`

	StartTime string `gorm:"type:varchar(5);not null;index"`
	EndTime   string `gorm:"type:varchar(5);not null"`

	IsAvailable bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Schedule *Schedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
