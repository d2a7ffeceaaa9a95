package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
	// Kept for historical rows; the reschedule operation re-confirms the same
	// row with the new slot rather than transitioning into this status.
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// appointments
//
// DoctorID and SlotID are both nil for an unassigned appointment: the patient
// has picked only SelectedSlotTime and a doctor is matched later. Invariant:
// at most one appointment with a non-terminal status may exist per
// (doctor_id, appointment_date, appointment_time).
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	PatientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	DoctorID  *uuid.UUID `gorm:"type:uuid;index:idx_appointments_doctor_date_time"`
	SlotID    *uuid.UUID `gorm:"type:uuid;index"`
	ServiceID uuid.UUID  `gorm:"type:uuid;not null;index"`

	AppointmentDate string `gorm:"type:varchar(10);not null;index:idx_appointments_doctor_date_time"`
	AppointmentTime string `gorm:"type:varchar(5);not null;index:idx_appointments_doctor_date_time"`

	// Desired start time for unassigned appointments awaiting a doctor match.
	SelectedSlotTime string `gorm:"type:varchar(5)"`

	DurationMin int `gorm:"not null"`

	Status AppointmentStatus `gorm:"type:varchar(32);not null;index"`

	Amount float64 `gorm:"not null;default:0"`
	IsPaid bool    `gorm:"not null;default:false"`

	CancellationReason string     `gorm:"type:text"`
	// No explicit type tag: the postgres dialector maps time.Time to
	// timestamptz (identical to "timestamp with time zone"), and the sqlite
	// dialector needs its own "datetime" decltype to scan values back.
	CancelledAt *time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time

	MeetingLink    string `gorm:"type:text"`
	MeetingEventID string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Patient *Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Slot    *Slot    `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Service *Service `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
