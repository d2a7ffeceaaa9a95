package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking/internal/model"
)

func TestCreateTemporaryAppointment_ClaimsSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)
	schedule := env.createSchedule(t, doctor, date, "09:00", "17:00")
	slot := env.createSlot(t, schedule, "09:00", "09:30", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		SlotID:    slot.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusPending, appt.Status)
	require.NotNil(t, appt.SlotID)
	require.Equal(t, slot.ID, *appt.SlotID)
	require.Equal(t, 30, appt.DurationMin)

	require.False(t, env.reloadSlot(t, slot.ID).IsAvailable)
}

func TestCreateAppointment_DirectPathConfirms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)

	appt, err := env.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      date,
		Time:      "11:00",
	})
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusConfirmed, appt.Status)
	require.NotNil(t, appt.ConfirmedAt)
}

func TestCreate_IncompleteIntake_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", false)
	svc := env.createService(t, "consultation", 30, true)

	_, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      futureDate(2),
		Time:      "09:00",
	})
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.Contains(t, br.Reason, "intake")
}

func TestCreate_DoubleBooking_SecondRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	other := env.createPatient(t, "other", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)

	_, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)

	_, err = env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: other.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	var cf *ConflictError
	require.ErrorAs(t, err, &cf)
	require.Equal(t, "doctor already has an appointment at this time", cf.Reason)

	// The double-booking invariant: exactly one non-terminal appointment for
	// the triple survives.
	var n int64
	require.NoError(t, env.db.Model(&model.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctor.ID, date, "09:00").
		Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCancel_TooClose_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)

	soon := time.Now().UTC().Add(30 * time.Minute)
	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      soon.Format("2006-01-02"),
		Time:      soon.Format("15:04"),
	})
	require.NoError(t, err)

	_, err = env.appointments.CancelAppointment(ctx, appt.ID.String(), "conflict")
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.Contains(t, br.Reason, "1 hour in advance")
	require.Equal(t, model.AppointmentStatusPending, env.reloadAppointment(t, appt.ID).Status)
}

func TestCancel_ReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)

	later := time.Now().UTC().Add(2 * time.Hour)
	date := later.Format("2006-01-02")
	clock := later.Format("15:04")
	schedule := env.createSchedule(t, doctor, date, "00:00", "23:59")
	slot := env.createSlot(t, schedule, clock, time.Now().UTC().Add(2*time.Hour+30*time.Minute).Format("15:04"), true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		SlotID:    slot.ID.String(),
		Date:      date,
		Time:      clock,
	})
	require.NoError(t, err)
	require.False(t, env.reloadSlot(t, slot.ID).IsAvailable)

	cancelled, err := env.appointments.CancelAppointment(ctx, appt.ID.String(), "schedule conflict")
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, "schedule conflict", cancelled.CancellationReason)
	require.True(t, env.reloadSlot(t, slot.ID).IsAvailable)

	// Cancelling again is rejected and leaves the slot untouched.
	_, err = env.appointments.CancelAppointment(ctx, appt.ID.String(), "again")
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.True(t, env.reloadSlot(t, slot.ID).IsAvailable)
}

func TestReschedule_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)
	schedule := env.createSchedule(t, doctor, date, "09:00", "17:00")
	oldSlot := env.createSlot(t, schedule, "09:00", "09:30", true)
	newSlot := env.createSlot(t, schedule, "14:00", "14:30", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		SlotID:    oldSlot.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)

	moved, err := env.appointments.RescheduleAppointment(ctx, appt.ID.String(), newSlot.ID.String(), "patient request")
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusConfirmed, moved.Status)
	require.Equal(t, newSlot.ID, *moved.SlotID)
	require.Equal(t, date, moved.AppointmentDate)
	require.Equal(t, "14:00", moved.AppointmentTime)

	require.True(t, env.reloadSlot(t, oldSlot.ID).IsAvailable)
	require.False(t, env.reloadSlot(t, newSlot.ID).IsAvailable)

	stored := env.reloadAppointment(t, appt.ID)
	require.Equal(t, newSlot.ID, *stored.SlotID)
	require.Equal(t, model.AppointmentStatusConfirmed, stored.Status)
}

func TestReschedule_InsufficientSlot_NoStateChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)
	schedule := env.createSchedule(t, doctor, date, "09:00", "17:00")
	oldSlot := env.createSlot(t, schedule, "09:00", "09:30", true)
	shortSlot := env.createSlot(t, schedule, "15:00", "15:20", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		SlotID:    oldSlot.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)

	_, err = env.appointments.RescheduleAppointment(ctx, appt.ID.String(), shortSlot.ID.String(), "")
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
	require.Contains(t, br.Reason, "insufficient")

	// Neither slot changed state.
	require.False(t, env.reloadSlot(t, oldSlot.ID).IsAvailable)
	require.True(t, env.reloadSlot(t, shortSlot.ID).IsAvailable)
	require.Equal(t, oldSlot.ID, *env.reloadAppointment(t, appt.ID).SlotID)
}

func TestConfirm_MarksPaidAndAttachesMeetingLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)

	confirmed, err := env.appointments.ConfirmAppointment(ctx, appt.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)
	require.True(t, confirmed.IsPaid)
	require.NotNil(t, confirmed.ConfirmedAt)

	stored := env.reloadAppointment(t, appt.ID)
	require.NotEmpty(t, stored.MeetingLink)
	require.NotEmpty(t, stored.MeetingEventID)

	// Confirming twice is rejected.
	_, err = env.appointments.ConfirmAppointment(ctx, appt.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
}

func TestStartAndComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)

	appt, err := env.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      futureDate(2),
		Time:      "09:00",
	})
	require.NoError(t, err)

	started, err := env.appointments.StartAppointment(ctx, appt.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusInProgress, started.Status)

	done, err := env.appointments.CompleteAppointment(ctx, appt.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// A pending appointment cannot jump straight to in-progress.
	other, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      futureDate(3),
		Time:      "09:00",
	})
	require.NoError(t, err)
	_, err = env.appointments.StartAppointment(ctx, other.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
}

func TestDelete_ReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)
	date := futureDate(2)
	schedule := env.createSchedule(t, doctor, date, "09:00", "17:00")
	slot := env.createSlot(t, schedule, "09:00", "09:30", true)

	appt, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		SlotID:    slot.ID.String(),
		Date:      date,
		Time:      "09:00",
	})
	require.NoError(t, err)
	require.False(t, env.reloadSlot(t, slot.ID).IsAvailable)

	require.NoError(t, env.appointments.DeleteAppointment(ctx, appt.ID.String()))
	require.True(t, env.reloadSlot(t, slot.ID).IsAvailable)

	_, err = env.appointments.GetByID(ctx, appt.ID.String())
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDelete_Completed_Rejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)

	appt, err := env.appointments.CreateAppointment(ctx, CreateAppointmentInput{
		PatientID: patient.ID.String(),
		DoctorID:  doctor.ID.String(),
		ServiceID: svc.ID.String(),
		Date:      futureDate(2),
		Time:      "09:00",
	})
	require.NoError(t, err)
	_, err = env.appointments.CompleteAppointment(ctx, appt.ID.String())
	require.NoError(t, err)

	err = env.appointments.DeleteAppointment(ctx, appt.ID.String())
	var br *BadRequestError
	require.ErrorAs(t, err, &br)
}

func TestListByPatient_Paginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createDoctor(t, "dr-a", true, true)
	patient := env.createPatient(t, "pat", true)
	svc := env.createService(t, "consultation", 30, true)

	times := []string{"09:00", "10:00", "11:00"}
	for _, clock := range times {
		_, err := env.appointments.CreateTemporaryAppointment(ctx, CreateAppointmentInput{
			PatientID: patient.ID.String(),
			DoctorID:  doctor.ID.String(),
			ServiceID: svc.ID.String(),
			Date:      futureDate(2),
			Time:      clock,
		})
		require.NoError(t, err)
	}

	page, err := env.appointments.ListByPatient(ctx, patient.ID.String(), 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 3, page.Total)
	require.True(t, page.HasNext)
	require.False(t, page.HasPrev)
}
