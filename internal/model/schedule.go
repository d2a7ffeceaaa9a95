package model

import (
	"time"

	"github.com/google/uuid"
)

// schedules: one doctor's working window for one date. Owns the slots.
//
// Dates are "YYYY-MM-DD" and clock times "HH:MM"; availability lookups and the
// double-booking check compare these as strings, so they are stored that way.
type Schedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	DoctorID uuid.UUID `gorm:"type:uuid;not null;index:idx_schedules_doctor_date"`

	Date      string `gorm:"type:varchar(10);not null;index:idx_schedules_doctor_date;index"`
	StartTime string `gorm:"type:varchar(5);not null"`
	EndTime   string `gorm:"type:varchar(5);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Slots  []Slot  `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
