package service

import (
	"context"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/repository"
)

// AssignmentService resolves unassigned appointments: bookings that carry a
// patient, service, and desired start time but no doctor or slot yet.
type AssignmentService struct {
	appointments repository.AppointmentRepository
	slots        repository.SlotRepository
}

func NewAssignmentService(
	appointments repository.AppointmentRepository,
	slots repository.SlotRepository,
) *AssignmentService {
	return &AssignmentService{appointments: appointments, slots: slots}
}

// AvailableDoctorsForAppointment lists every (doctor, slot) pair that could
// host the appointment: active, available doctors with an open slot starting
// exactly at the selected time on the appointment's date. Read-only and
// unlocked; two unassigned appointments may see the same candidate and the
// assign transaction decides the winner.
func (s *AssignmentService) AvailableDoctorsForAppointment(ctx context.Context, appointmentID string) ([]repository.Candidate, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, orNotFound(err, "appointment", appointmentID)
	}

	a := booking.AssignmentOf(appt)
	if a.Assigned() {
		return nil, badRequest("appointment already has a doctor assigned")
	}
	if a.SelectedTime == "" {
		return nil, badRequest("appointment has no selected slot time")
	}

	return s.slots.ListCandidates(ctx, appt.AppointmentDate, a.SelectedTime)
}

// UnassignedAppointments lists doctorless, slotless appointments, newest
// first, optionally filtered by status.
func (s *AssignmentService) UnassignedAppointments(ctx context.Context, status model.AppointmentStatus, page, pageSize int) (booking.Page[model.Appointment], error) {
	page, pageSize = booking.Normalize(page, pageSize)
	items, total, err := s.appointments.ListUnassigned(ctx, status, pageSize, booking.Offset(page, pageSize))
	if err != nil {
		return booking.Page[model.Appointment]{}, err
	}
	return booking.NewPage(items, total, page, pageSize), nil
}
