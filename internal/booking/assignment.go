package booking

import (
	"github.com/google/uuid"

	"github.com/clinicore/booking/internal/model"
)

// Assignment is the tagged view of an appointment's doctor/slot binding. The
// two nullable foreign keys collapse into one explicit variant so the
// unassigned path is handled deliberately instead of via scattered nil checks.
type Assignment struct {
	assigned bool

	// Set for unassigned appointments: the start time the patient picked.
	SelectedTime string

	// Set for assigned appointments.
	DoctorID uuid.UUID
	SlotID   uuid.UUID
}

func (a Assignment) Assigned() bool { return a.assigned }

// AssignmentOf derives the variant from the stored row. An appointment with a
// doctor but no slot (or the reverse) is treated as assigned; that state only
// occurs transiently inside a transaction.
func AssignmentOf(appt *model.Appointment) Assignment {
	if appt.DoctorID == nil && appt.SlotID == nil {
		return Assignment{SelectedTime: appt.SelectedSlotTime}
	}
	a := Assignment{assigned: true}
	if appt.DoctorID != nil {
		a.DoctorID = *appt.DoctorID
	}
	if appt.SlotID != nil {
		a.SlotID = *appt.SlotID
	}
	return a
}
