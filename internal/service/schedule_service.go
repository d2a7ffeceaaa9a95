package service

import (
	"context"

	"github.com/clinicore/booking/internal/booking"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/repository"
)

// ScheduleService turns a doctor's working window into bookable slots and
// answers slot lookups. Schedule rows themselves are created elsewhere.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	slots     repository.SlotRepository
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	slots repository.SlotRepository,
) *ScheduleService {
	return &ScheduleService{schedules: schedules, slots: slots}
}

// GenerateSlots splits the schedule's window into slotMinutes-long slots and
// inserts the ones that do not exist yet. A tail shorter than slotMinutes is
// dropped. Existing slots keep their availability untouched, so regeneration
// is safe while bookings are live.
func (s *ScheduleService) GenerateSlots(ctx context.Context, scheduleID string, slotMinutes int) ([]model.Slot, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, orNotFound(err, "schedule", scheduleID)
	}

	ranges, err := booking.SplitWindow(schedule.StartTime, schedule.EndTime, slotMinutes)
	if err != nil {
		return nil, badRequest("cannot split schedule window: %v", err)
	}

	existing, err := s.slots.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, slot := range existing {
		taken[slot.StartTime] = struct{}{}
	}

	var fresh []model.Slot
	for _, r := range ranges {
		if _, ok := taken[r.Start]; ok {
			continue
		}
		fresh = append(fresh, model.Slot{
			ScheduleID:  schedule.ID,
			StartTime:   r.Start,
			EndTime:     r.End,
			IsAvailable: true,
		})
	}
	if err := s.slots.CreateBatch(ctx, fresh); err != nil {
		return nil, err
	}

	return s.slots.ListBySchedule(ctx, scheduleID)
}

// ListSlots returns all slots of a schedule, ordered by start time.
func (s *ScheduleService) ListSlots(ctx context.Context, scheduleID string) ([]model.Slot, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, orNotFound(err, "schedule", scheduleID)
	}
	return s.slots.ListBySchedule(ctx, scheduleID)
}

// ListFreeSlots returns a doctor's open slots for one date.
func (s *ScheduleService) ListFreeSlots(ctx context.Context, doctorID, date string) ([]model.Slot, error) {
	if _, err := booking.ParseDate(date); err != nil {
		return nil, badRequest("invalid date, want YYYY-MM-DD")
	}
	return s.slots.ListFreeByDoctorDate(ctx, doctorID, date)
}
