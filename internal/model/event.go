package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit event type.
type EventType string

const (
	EventTypeAppointmentCreated     EventType = "appointment_created"
	EventTypeAppointmentConfirmed   EventType = "appointment_confirmed"
	EventTypeAppointmentCancelled   EventType = "appointment_cancelled"
	EventTypeAppointmentRescheduled EventType = "appointment_rescheduled"
	EventTypeAppointmentDeleted     EventType = "appointment_deleted"
	EventTypeDoctorAssigned         EventType = "doctor_assigned"
)

// audit_events: written after commit, best-effort, alongside notifications.
type AuditEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;index"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
