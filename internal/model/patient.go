package model

import (
	"time"

	"github.com/google/uuid"
)

// patients: read-only here, owned by the patient admin subsystem.
type Patient struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name  string `gorm:"type:varchar(255);not null"`
	Email string `gorm:"type:varchar(255)"`

	// Medical intake must be complete before a booking is accepted.
	IntakeComplete bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
