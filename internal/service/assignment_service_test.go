package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking/internal/model"
)

func TestUnassignedFlow_AssignDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	active := env.createDoctor(t, "dr-active", true, true)
	inactive := env.createDoctor(t, "dr-inactive", false, true)
	date := futureDate(2)

	activeSchedule := env.createSchedule(t, active, date, "09:00", "17:00")
	activeSlot := env.createSlot(t, activeSchedule, "10:00", "10:30", true)
	inactiveSchedule := env.createSchedule(t, inactive, date, "09:00", "17:00")
	env.createSlot(t, inactiveSchedule, "10:00", "10:30", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID:        patient.ID.String(),
		ServiceID:        svc.ID.String(),
		Date:             date,
		Time:             "10:00",
		SelectedSlotTime: "10:00",
	})
	require.NoError(t, err)
	require.Nil(t, appt.DoctorID)
	require.Nil(t, appt.SlotID)
	require.Equal(t, "10:00", appt.SelectedSlotTime)

	unassigned, err := env.assignments.UnassignedAppointments(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, unassigned.Items, 1)
	require.Equal(t, appt.ID, unassigned.Items[0].ID)

	// Only the active, available doctor qualifies as a candidate.
	candidates, err := env.assignments.AvailableDoctorsForAppointment(ctx, appt.ID.String())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, active.ID, candidates[0].Doctor.ID)
	require.Equal(t, activeSlot.ID, candidates[0].Slot.ID)

	assigned, err := env.appointments.AssignDoctorToAppointment(ctx, appt.ID.String(), active.ID.String(), activeSlot.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusConfirmed, assigned.Status)
	require.Equal(t, active.ID, *assigned.DoctorID)
	require.Equal(t, activeSlot.ID, *assigned.SlotID)
	require.False(t, env.reloadSlot(t, activeSlot.ID).IsAvailable)

	// Assigning again is rejected; the appointment left the unassigned pool.
	_, err = env.appointments.AssignDoctorToAppointment(ctx, appt.ID.String(), active.ID.String(), activeSlot.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.Equal(t, "appointment already has a doctor assigned", br.Reason)

	unassigned, err = env.assignments.UnassignedAppointments(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Empty(t, unassigned.Items)
}

func TestAssignDoctor_ForeignSlot_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	doctor := env.createDoctor(t, "dr-a", true, true)
	other := env.createDoctor(t, "dr-b", true, true)
	date := futureDate(2)

	otherSchedule := env.createSchedule(t, other, date, "09:00", "17:00")
	otherSlot := env.createSlot(t, otherSchedule, "10:00", "10:30", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID:        patient.ID.String(),
		ServiceID:        svc.ID.String(),
		Date:             date,
		Time:             "10:00",
		SelectedSlotTime: "10:00",
	})
	require.NoError(t, err)

	_, err = env.appointments.AssignDoctorToAppointment(ctx, appt.ID.String(), doctor.ID.String(), otherSlot.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.Contains(t, br.Reason, "schedule")
	require.True(t, env.reloadSlot(t, otherSlot.ID).IsAvailable)
}

func TestAvailableDoctors_AssignedAppointment_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	doctor := env.createDoctor(t, "dr-a", true, true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      futureDate(2),
		Time:      "10:00",
	})
	require.NoError(t, err)

	_, err = env.assignments.AvailableDoctorsForAppointment(ctx, appt.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)

	_, err = env.assignments.AvailableDoctorsForAppointment(ctx, "c0ffee00-0000-0000-0000-000000000000")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
