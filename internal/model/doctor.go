package model

import (
	"time"

	"github.com/google/uuid"
)

// doctors: read-only for the booking core; ownership lives in the staff admin.
type Doctor struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name  string `gorm:"type:varchar(255);not null"`
	Email string `gorm:"type:varchar(255)"`

	// IsActive: the doctor works at the clinic at all.
	// IsAvailable: the doctor currently accepts new bookings.
	IsActive    bool `gorm:"not null;default:true;index"`
	IsAvailable bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Schedules []Schedule `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
