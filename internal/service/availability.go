package service

import (
	"context"
	"time"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/repository"
)

// CheckRequest is one booking attempt to validate. DoctorID is empty for
// unassigned bookings, SlotID is empty when no slot is claimed yet.
type CheckRequest struct {
	DoctorID    string
	ServiceID   string
	SlotID      string
	Date        string
	Time        string
	DurationMin int // caller-supplied fallback, used only when the service has no addons
}

// CheckResult carries the entities the lifecycle manager needs, so it does
// not re-query what the checker already loaded.
type CheckResult struct {
	Doctor      *model.Doctor
	Service     *model.Service
	Slot        *model.Slot
	DurationMin int
}

// AvailabilityChecker runs the booking preconditions. Reads only; every slot
// mutation happens later inside the lifecycle manager's transaction, and the
// double-booking query is re-run there under the slot row lock.
type AvailabilityChecker struct {
	doctors      repository.DoctorRepository
	services     repository.ServiceRepository
	slots        repository.SlotRepository
	appointments repository.AppointmentRepository

	loc *time.Location
}

func NewAvailabilityChecker(
	doctors repository.DoctorRepository,
	services repository.ServiceRepository,
	slots repository.SlotRepository,
	appointments repository.AppointmentRepository,
	loc *time.Location,
) *AvailabilityChecker {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityChecker{
		doctors:      doctors,
		services:     services,
		slots:        slots,
		appointments: appointments,
		loc:          loc,
	}
}

// CanBook validates one booking attempt. The checks short-circuit in order:
// doctor, service, slot, past-date, double booking.
func (c *AvailabilityChecker) CanBook(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	res := &CheckResult{}

	if req.DoctorID != "" {
		doctor, err := c.doctors.GetByID(ctx, req.DoctorID)
		if err != nil {
			return nil, orNotFound(err, "doctor", req.DoctorID)
		}
		if !doctor.IsActive {
			return nil, badRequest("doctor is not active")
		}
		if !doctor.IsAvailable {
			return nil, badRequest("doctor is not available for appointments")
		}
		res.Doctor = doctor
	}

	svc, duration, err := c.resolveService(ctx, req.ServiceID, req.DurationMin)
	if err != nil {
		return nil, err
	}
	res.Service = svc
	res.DurationMin = duration

	if req.SlotID != "" {
		slot, err := c.slots.GetByID(ctx, req.SlotID)
		if err != nil {
			return nil, orNotFound(err, "slot", req.SlotID)
		}
		if !slot.IsAvailable {
			return nil, conflict("slot is no longer available")
		}
		span, err := booking.SpanMinutes(slot.StartTime, slot.EndTime)
		if err != nil {
			return nil, badRequest("slot has an invalid time range")
		}
		if span < duration {
			return nil, badRequest("slot duration is insufficient for this service")
		}
		res.Slot = slot
	}

	if booking.IsPast(req.Date, req.Time, time.Now().In(c.loc)) {
		return nil, badRequest("cannot book an appointment in the past")
	}

	if req.DoctorID != "" {
		n, err := c.appointments.CountActive(ctx, req.DoctorID, req.Date, req.Time, booking.NonTerminalStatuses(), "")
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, conflict("doctor already has an appointment at this time")
		}
	}

	return res, nil
}

// resolveService loads the primary service plus its addons and computes the
// total duration. The caller-supplied fallback applies only when the service
// has no addons.
func (c *AvailabilityChecker) resolveService(ctx context.Context, serviceID string, fallback int) (*model.Service, int, error) {
	svc, err := c.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, 0, orNotFound(err, "service", serviceID)
	}
	if !svc.IsActive {
		return nil, 0, badRequest("service is not active")
	}

	addons, err := c.services.ListAddons(ctx, svc.ID)
	if err != nil {
		return nil, 0, err
	}

	if len(addons) == 0 {
		duration := svc.DurationMin
		if fallback > 0 {
			duration = fallback
		}
		return svc, duration, nil
	}

	duration := svc.DurationMin
	for _, a := range addons {
		if !a.IsActive {
			return nil, 0, badRequest("additional service %q is not active", a.Name)
		}
		duration += a.DurationMin
	}
	return svc, duration, nil
}
