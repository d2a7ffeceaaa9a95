package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSlots_SplitsWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	schedule := env.createSchedule(t, doctor, futureDate(2), "09:00", "11:00")

	slots, err := env.schedules.GenerateSlots(ctx, schedule.ID.String(), 30)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	require.Equal(t, "09:00", slots[0].StartTime)
	require.Equal(t, "09:30", slots[0].EndTime)
	require.Equal(t, "10:30", slots[3].StartTime)
	require.Equal(t, "11:00", slots[3].EndTime)
	for _, s := range slots {
		require.True(t, s.IsAvailable)
	}
}

func TestGenerateSlots_RegenerationKeepsBookings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	schedule := env.createSchedule(t, doctor, futureDate(2), "09:00", "11:00")

	slots, err := env.schedules.GenerateSlots(ctx, schedule.ID.String(), 30)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	booked := slots[1]
	require.NoError(t, env.slotRepo.SetAvailability(ctx, booked.ID, false))

	again, err := env.schedules.GenerateSlots(ctx, schedule.ID.String(), 30)
	require.NoError(t, err)
	require.Len(t, again, 4)
	require.False(t, env.reloadSlot(t, booked.ID).IsAvailable)
}

func TestGenerateSlots_DropsShortTail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	schedule := env.createSchedule(t, doctor, futureDate(2), "09:00", "10:45")

	slots, err := env.schedules.GenerateSlots(ctx, schedule.ID.String(), 30)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	require.Equal(t, "10:30", slots[2].EndTime)
}

func TestGenerateSlots_BadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	schedule := env.createSchedule(t, doctor, futureDate(2), "09:00", "11:00")

	_, err := env.schedules.GenerateSlots(ctx, schedule.ID.String(), 0)
	var br *BadRequestError
	require.ErrorAs(t, err, &br)

	_, err = env.schedules.GenerateSlots(ctx, "c0ffee00-0000-0000-0000-000000000000", 30)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListFreeSlots_FiltersBooked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	date := futureDate(2)
	schedule := env.createSchedule(t, doctor, date, "09:00", "10:00")
	free := env.createSlot(t, schedule, "09:00", "09:30", true)
	env.createSlot(t, schedule, "09:30", "10:00", false)

	slots, err := env.schedules.ListFreeSlots(ctx, doctor.ID.String(), date)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, free.ID, slots[0].ID)

	_, err = env.schedules.ListFreeSlots(ctx, doctor.ID.String(), "not-a-date")
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
}
