package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/meeting"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/notify"
	"github.com/clinicore/booking/internal/repository"
)

// Cancellations must arrive at least this long before the appointment starts.
const cancellationWindow = time.Hour

// CreateAppointmentInput describes one booking request. DoctorID and SlotID
// are empty for the unassigned path, where the patient only picks
// SelectedSlotTime and a doctor is matched later.
type CreateAppointmentInput struct {
	PatientID        string
	DoctorID         string
	ServiceID        string
	SlotID           string
	Date             string
	Time             string
	SelectedSlotTime string
	DurationMin      int
	Amount           float64
}

// AppointmentService orchestrates the appointment lifecycle. Every mutation
// that touches a slot's availability runs the slot flip and the appointment
// write in one transaction; emails, meeting links, and audit events happen
// after commit and never roll anything back.
type AppointmentService struct {
	db      *gorm.DB
	checker *AvailabilityChecker

	appointments repository.AppointmentRepository
	slots        repository.SlotRepository
	schedules    repository.ScheduleRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	events       repository.EventRepository

	notifier notify.Notifier
	meetings meeting.LinkProvider
	effects  *sideEffects

	loc *time.Location
	log zerolog.Logger
}

func NewAppointmentService(
	db *gorm.DB,
	checker *AvailabilityChecker,
	appointments repository.AppointmentRepository,
	slots repository.SlotRepository,
	schedules repository.ScheduleRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	events repository.EventRepository,
	notifier notify.Notifier,
	meetings meeting.LinkProvider,
	loc *time.Location,
	log zerolog.Logger,
	sideEffectTimeout time.Duration,
) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		db:           db,
		checker:      checker,
		appointments: appointments,
		slots:        slots,
		schedules:    schedules,
		doctors:      doctors,
		patients:     patients,
		events:       events,
		notifier:     notifier,
		meetings:     meetings,
		effects:      newSideEffects(log, sideEffectTimeout),
		loc:          loc,
		log:          log,
	}
}

// CreateTemporaryAppointment books in PENDING, ahead of payment.
func (s *AppointmentService) CreateTemporaryAppointment(ctx context.Context, in CreateAppointmentInput) (*model.Appointment, error) {
	return s.create(ctx, in, model.AppointmentStatusPending)
}

// CreateAppointment is the direct admin path: the booking lands CONFIRMED.
func (s *AppointmentService) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*model.Appointment, error) {
	return s.create(ctx, in, model.AppointmentStatusConfirmed)
}

func (s *AppointmentService) create(ctx context.Context, in CreateAppointmentInput, status model.AppointmentStatus) (*model.Appointment, error) {
	if _, err := booking.At(in.Date, in.Time, s.loc); err != nil {
		return nil, badRequest("invalid appointment date or time")
	}

	patient, err := s.patients.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, orNotFound(err, "patient", in.PatientID)
	}
	if !patient.IntakeComplete {
		return nil, badRequest("medical intake form is incomplete")
	}

	check, err := s.checker.CanBook(ctx, CheckRequest{
		DoctorID:    in.DoctorID,
		ServiceID:   in.ServiceID,
		SlotID:      in.SlotID,
		Date:        in.Date,
		Time:        in.Time,
		DurationMin: in.DurationMin,
	})
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		PatientID:       patient.ID,
		ServiceID:       check.Service.ID,
		AppointmentDate: in.Date,
		AppointmentTime: in.Time,
		DurationMin:     check.DurationMin,
		Status:          status,
		Amount:          in.Amount,
	}
	if check.Doctor != nil {
		appt.DoctorID = &check.Doctor.ID
	} else {
		appt.SelectedSlotTime = in.SelectedSlotTime
		if appt.SelectedSlotTime == "" {
			appt.SelectedSlotTime = in.Time
		}
	}
	if status == model.AppointmentStatusConfirmed {
		now := time.Now().In(s.loc)
		appt.ConfirmedAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appts := s.appointments.WithTx(tx)
		slots := s.slots.WithTx(tx)

		if check.Slot != nil {
			slot, err := slots.GetByIDLocked(ctx, check.Slot.ID.String())
			if err != nil {
				return orNotFound(err, "slot", check.Slot.ID.String())
			}
			if !slot.IsAvailable {
				return conflict("slot is no longer available")
			}
			if err := slots.SetAvailability(ctx, slot.ID, false); err != nil {
				return err
			}
			appt.SlotID = &slot.ID
		}

		// Re-run the double-booking guard under the transaction; the
		// pre-check outside it is only for early error reporting.
		if appt.DoctorID != nil {
			n, err := appts.CountActive(ctx, appt.DoctorID.String(), appt.AppointmentDate, appt.AppointmentTime, booking.NonTerminalStatuses(), "")
			if err != nil {
				return err
			}
			if n > 0 {
				return conflict("doctor already has an appointment at this time")
			}
		}

		return appts.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventTypeAppointmentCreated, appt, map[string]any{
		"status": string(appt.Status),
		"date":   appt.AppointmentDate,
		"time":   appt.AppointmentTime,
	})

	return appt, nil
}

// ConfirmAppointment is the payment subsystem's signal: payment verified,
// promote PENDING to CONFIRMED and mark paid. Meeting link and confirmation
// email follow after commit, best-effort.
func (s *AppointmentService) ConfirmAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusPending {
		return nil, badRequest("only a pending appointment can be confirmed")
	}

	now := time.Now().In(s.loc)
	err = s.appointments.Updates(ctx, id, map[string]any{
		"status":       model.AppointmentStatusConfirmed,
		"is_paid":      true,
		"confirmed_at": now,
	})
	if err != nil {
		return nil, err
	}
	appt.Status = model.AppointmentStatusConfirmed
	appt.IsPaid = true
	appt.ConfirmedAt = &now

	if appt.DoctorID != nil {
		s.attachMeetingLink(ctx, appt)
	}
	s.effects.run(ctx, "confirmation email", id, func(c context.Context) error {
		return s.notifier.SendConfirmationEmail(c, s.message(c, appt, ""))
	})
	s.recordEvent(ctx, model.EventTypeAppointmentConfirmed, appt, map[string]any{"is_paid": true})

	return appt, nil
}

// StartAppointment marks the visit as begun.
func (s *AppointmentService) StartAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusInProgress, nil)
}

// CompleteAppointment closes the visit.
func (s *AppointmentService) CompleteAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	now := time.Now().In(s.loc)
	return s.transition(ctx, id, model.AppointmentStatusCompleted, map[string]any{"completed_at": now})
}

// MarkNoShow records that the patient never arrived.
func (s *AppointmentService) MarkNoShow(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusNoShow, nil)
}

func (s *AppointmentService) transition(ctx context.Context, id string, to model.AppointmentStatus, extra map[string]any) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(appt.Status, to) {
		return nil, badRequest("appointment cannot move from %s to %s", appt.Status, to)
	}

	fields := map[string]any{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.appointments.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// CancelAppointment cancels and releases the slot in one transaction.
// Notifications to the patient and the assigned doctor go out after commit.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id, reason string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentStatusCompleted {
		return nil, badRequest("completed appointment cannot be cancelled")
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return nil, badRequest("appointment is already cancelled")
	}

	start, err := booking.At(appt.AppointmentDate, appt.AppointmentTime, s.loc)
	if err != nil {
		return nil, badRequest("appointment has an invalid date or time")
	}
	now := time.Now().In(s.loc)
	if start.Sub(now) < cancellationWindow {
		return nil, badRequest("appointments can only be cancelled at least 1 hour in advance")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appts := s.appointments.WithTx(tx)
		slots := s.slots.WithTx(tx)

		if err := appts.Updates(ctx, id, map[string]any{
			"status":              model.AppointmentStatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
		}); err != nil {
			return err
		}

		if appt.SlotID != nil {
			if _, err := slots.GetByIDLocked(ctx, appt.SlotID.String()); err != nil {
				return orNotFound(err, "slot", appt.SlotID.String())
			}
			if err := slots.SetAvailability(ctx, *appt.SlotID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appt.Status = model.AppointmentStatusCancelled
	appt.CancelledAt = &now
	appt.CancellationReason = reason

	s.effects.run(ctx, "cancellation email", id, func(c context.Context) error {
		return s.notifier.SendCancellationEmail(c, s.message(c, appt, reason))
	})
	s.recordEvent(ctx, model.EventTypeAppointmentCancelled, appt, map[string]any{"reason": reason})

	return appt, nil
}

// RescheduleAppointment moves the same row onto a new slot: the old slot is
// released, the new one claimed, and the appointment re-confirmed, all in one
// transaction. The calendar event moves after commit, best-effort.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, id, newSlotID, reason string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentStatusCompleted {
		return nil, badRequest("completed appointment cannot be rescheduled")
	}
	if booking.IsTerminal(appt.Status) {
		return nil, badRequest("a %s appointment cannot be rescheduled", appt.Status)
	}

	_, duration, err := s.checker.resolveService(ctx, appt.ServiceID.String(), appt.DurationMin)
	if err != nil {
		return nil, err
	}

	newSlot, err := s.slots.GetByID(ctx, newSlotID)
	if err != nil {
		return nil, orNotFound(err, "slot", newSlotID)
	}
	if !newSlot.IsAvailable {
		return nil, conflict("slot is no longer available")
	}
	span, err := booking.SpanMinutes(newSlot.StartTime, newSlot.EndTime)
	if err != nil {
		return nil, badRequest("slot has an invalid time range")
	}
	if span < duration {
		return nil, badRequest("slot duration is insufficient for this service")
	}

	schedule, err := s.schedules.GetByID(ctx, newSlot.ScheduleID.String())
	if err != nil {
		return nil, orNotFound(err, "schedule", newSlot.ScheduleID.String())
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appts := s.appointments.WithTx(tx)
		slots := s.slots.WithTx(tx)

		locked, err := slots.GetByIDLocked(ctx, newSlotID)
		if err != nil {
			return orNotFound(err, "slot", newSlotID)
		}
		if !locked.IsAvailable {
			return conflict("slot is no longer available")
		}

		n, err := appts.CountActive(ctx, schedule.DoctorID.String(), schedule.Date, locked.StartTime, booking.NonTerminalStatuses(), id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("doctor already has an appointment at this time")
		}

		if appt.SlotID != nil {
			if _, err := slots.GetByIDLocked(ctx, appt.SlotID.String()); err != nil {
				return orNotFound(err, "slot", appt.SlotID.String())
			}
			if err := slots.SetAvailability(ctx, *appt.SlotID, true); err != nil {
				return err
			}
		}
		if err := slots.SetAvailability(ctx, locked.ID, false); err != nil {
			return err
		}

		return appts.Updates(ctx, id, map[string]any{
			"doctor_id":        schedule.DoctorID,
			"slot_id":          locked.ID,
			"appointment_date": schedule.Date,
			"appointment_time": locked.StartTime,
			"status":           model.AppointmentStatusConfirmed,
		})
	})
	if err != nil {
		return nil, err
	}

	appt.DoctorID = &schedule.DoctorID
	appt.SlotID = &newSlot.ID
	appt.AppointmentDate = schedule.Date
	appt.AppointmentTime = newSlot.StartTime
	appt.Status = model.AppointmentStatusConfirmed

	s.attachMeetingLink(ctx, appt)
	s.effects.run(ctx, "reschedule email", id, func(c context.Context) error {
		return s.notifier.SendRescheduleEmail(c, s.message(c, appt, reason))
	})
	s.recordEvent(ctx, model.EventTypeAppointmentRescheduled, appt, map[string]any{
		"reason": reason,
		"date":   appt.AppointmentDate,
		"time":   appt.AppointmentTime,
	})

	return appt, nil
}

// DeleteAppointment removes the row and frees its slot. No notifications.
func (s *AppointmentService) DeleteAppointment(ctx context.Context, id string) error {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appt.Status == model.AppointmentStatusCompleted {
		return badRequest("completed appointment cannot be deleted")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appts := s.appointments.WithTx(tx)
		slots := s.slots.WithTx(tx)

		if appt.SlotID != nil {
			if _, err := slots.GetByIDLocked(ctx, appt.SlotID.String()); err != nil {
				return orNotFound(err, "slot", appt.SlotID.String())
			}
			if err := slots.SetAvailability(ctx, *appt.SlotID, true); err != nil {
				return err
			}
		}
		return appts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	// The row is gone, so the event carries the id in its payload only.
	s.recordEvent(ctx, model.EventTypeAppointmentDeleted, nil, map[string]any{
		"appointment_id": id,
		"status":         string(appt.Status),
	})
	return nil
}

// AssignDoctorToAppointment promotes an unassigned appointment: binds the
// doctor and slot, adopts the slot's date and start time, and confirms.
// Whichever of two racing assignments commits first wins; the loser fails the
// availability check inside the transaction. No notification here; emails are
// deferred to payment confirmation.
func (s *AppointmentService) AssignDoctorToAppointment(ctx context.Context, id, doctorID, slotID string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.AssignmentOf(appt).Assigned() {
		return nil, badRequest("appointment already has a doctor assigned")
	}

	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, orNotFound(err, "doctor", doctorID)
	}
	if !doctor.IsActive || !doctor.IsAvailable {
		return nil, badRequest("doctor is not available for appointments")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appts := s.appointments.WithTx(tx)
		slots := s.slots.WithTx(tx)

		slot, err := slots.GetByIDLocked(ctx, slotID)
		if err != nil {
			return orNotFound(err, "slot", slotID)
		}
		if !slot.IsAvailable {
			return conflict("slot is no longer available")
		}

		schedule, err := s.schedules.GetByID(ctx, slot.ScheduleID.String())
		if err != nil {
			return orNotFound(err, "schedule", slot.ScheduleID.String())
		}
		if schedule.DoctorID != doctor.ID {
			return badRequest("slot does not belong to this doctor's schedule")
		}

		n, err := appts.CountActive(ctx, doctorID, schedule.Date, slot.StartTime, booking.NonTerminalStatuses(), id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("doctor already has an appointment at this time")
		}

		if err := slots.SetAvailability(ctx, slot.ID, false); err != nil {
			return err
		}

		appt.DoctorID = &doctor.ID
		appt.SlotID = &slot.ID
		appt.AppointmentDate = schedule.Date
		appt.AppointmentTime = slot.StartTime
		appt.Status = model.AppointmentStatusConfirmed

		return appts.Updates(ctx, id, map[string]any{
			"doctor_id":        doctor.ID,
			"slot_id":          slot.ID,
			"appointment_date": schedule.Date,
			"appointment_time": slot.StartTime,
			"status":           model.AppointmentStatusConfirmed,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.EventTypeDoctorAssigned, appt, map[string]any{
		"doctor_id": doctorID,
		"slot_id":   slotID,
	})

	return appt, nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "appointment", id)
	}
	return appt, nil
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID string, page, pageSize int) (booking.Page[model.Appointment], error) {
	page, pageSize = booking.Normalize(page, pageSize)
	items, total, err := s.appointments.ListByDoctor(ctx, doctorID, pageSize, booking.Offset(page, pageSize))
	if err != nil {
		return booking.Page[model.Appointment]{}, err
	}
	return booking.NewPage(items, total, page, pageSize), nil
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID string, page, pageSize int) (booking.Page[model.Appointment], error) {
	page, pageSize = booking.Normalize(page, pageSize)
	items, total, err := s.appointments.ListByPatient(ctx, patientID, pageSize, booking.Offset(page, pageSize))
	if err != nil {
		return booking.Page[model.Appointment]{}, err
	}
	return booking.NewPage(items, total, page, pageSize), nil
}

// attachMeetingLink creates or moves the calendar event and persists the
// resulting link on the appointment. Any failure is logged and swallowed; a
// missing link is regenerable later.
func (s *AppointmentService) attachMeetingLink(ctx context.Context, appt *model.Appointment) {
	s.effects.run(ctx, "meeting link", appt.ID.String(), func(c context.Context) error {
		details := meeting.Details{
			Date:        appt.AppointmentDate,
			Time:        appt.AppointmentTime,
			DurationMin: appt.DurationMin,
			Subject:     "Medical appointment",
		}
		if appt.DoctorID != nil {
			if doctor, err := s.doctors.GetByID(c, appt.DoctorID.String()); err == nil {
				details.HostName = doctor.Name
				details.HostEmail = doctor.Email
			}
		}
		if patient, err := s.patients.GetByID(c, appt.PatientID.String()); err == nil {
			details.AttendeeName = patient.Name
			details.AttendeeEmail = patient.Email
		}

		var (
			ev  meeting.Event
			err error
		)
		if appt.MeetingEventID != "" {
			ev, err = s.meetings.UpdateMeetingEvent(c, appt.MeetingEventID, details)
		} else {
			ev, err = s.meetings.GenerateMeetingLink(c, details)
		}
		if err != nil {
			return err
		}

		appt.MeetingLink = ev.Link
		appt.MeetingEventID = ev.EventID
		return s.appointments.Updates(c, appt.ID.String(), map[string]any{
			"meeting_link":     ev.Link,
			"meeting_event_id": ev.EventID,
		})
	})
}

// message assembles the notification payload; lookups inside it are
// best-effort like the send itself.
func (s *AppointmentService) message(ctx context.Context, appt *model.Appointment, reason string) notify.Message {
	msg := notify.Message{
		Date:        appt.AppointmentDate,
		Time:        appt.AppointmentTime,
		Reason:      reason,
		MeetingLink: appt.MeetingLink,
	}
	if patient, err := s.patients.GetByID(ctx, appt.PatientID.String()); err == nil {
		msg.PatientName = patient.Name
		msg.PatientEmail = patient.Email
	}
	if appt.DoctorID != nil {
		if doctor, err := s.doctors.GetByID(ctx, appt.DoctorID.String()); err == nil {
			msg.DoctorName = doctor.Name
			msg.DoctorEmail = doctor.Email
		}
	}
	return msg
}

func (s *AppointmentService) recordEvent(ctx context.Context, evType model.EventType, appt *model.Appointment, details map[string]any) {
	var apptID *uuid.UUID
	id := ""
	if appt != nil {
		apptID = &appt.ID
		id = appt.ID.String()
	}
	s.effects.run(ctx, "audit event", id, func(c context.Context) error {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		return s.events.Create(c, &model.AuditEvent{
			EventType:     evType,
			AppointmentID: apptID,
			Details:       datatypes.JSON(payload),
		})
	})
}
