package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clinicore/booking/internal/meeting"
	"github.com/clinicore/booking/internal/model"
	"github.com/clinicore/booking/internal/notify"
	"github.com/clinicore/booking/internal/repository"
)

type testEnv struct {
	db *gorm.DB

	appointments *AppointmentService
	assignments  *AssignmentService
	schedules    *ScheduleService
	checker      *AvailabilityChecker

	slotRepo repository.SlotRepository
	apptRepo repository.AppointmentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named shared-cache database so every pooled connection sees the same
	// in-memory store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	doctorRepo := repository.NewGormDoctorRepository(db)
	patientRepo := repository.NewGormPatientRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	scheduleRepo := repository.NewGormScheduleRepository(db)
	slotRepo := repository.NewGormSlotRepository(db)
	apptRepo := repository.NewGormAppointmentRepository(db)
	eventRepo := repository.NewGormEventRepository(db)

	log := zerolog.Nop()
	checker := NewAvailabilityChecker(doctorRepo, serviceRepo, slotRepo, apptRepo, time.UTC)

	return &testEnv{
		db: db,
		appointments: NewAppointmentService(
			db,
			checker,
			apptRepo,
			slotRepo,
			scheduleRepo,
			doctorRepo,
			patientRepo,
			eventRepo,
			notify.NewLogNotifier(log),
			meeting.NewStaticProvider(),
			time.UTC,
			log,
			time.Second,
		),
		assignments: NewAssignmentService(apptRepo, slotRepo),
		schedules:   NewScheduleService(scheduleRepo, slotRepo),
		checker:     checker,
		slotRepo:    slotRepo,
		apptRepo:    apptRepo,
	}
}

func (e *testEnv) createDoctor(t *testing.T, name string, active, available bool) *model.Doctor {
	t.Helper()
	d := &model.Doctor{
		Name:        name,
		Email:       name + "@clinic.test",
		IsActive:    active,
		IsAvailable: available,
	}
	// gorm replaces zero-valued fields that carry a default tag with the
	// default on insert (and writes it back into the struct), so a false flag
	// must be persisted with an explicit map update.
	require.NoError(t, e.db.Create(d).Error)
	require.NoError(t, e.db.Model(d).Updates(map[string]interface{}{
		"is_active":    active,
		"is_available": available,
	}).Error)
	d.IsActive, d.IsAvailable = active, available
	return d
}

func (e *testEnv) createPatient(t *testing.T, name string, intakeComplete bool) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Name:           name,
		Email:          name + "@example.test",
		IntakeComplete: intakeComplete,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) createService(t *testing.T, name string, durationMin int, active bool) *model.Service {
	t.Helper()
	s := &model.Service{
		Name:        name,
		DurationMin: durationMin,
		IsActive:    active,
	}
	require.NoError(t, e.db.Create(s).Error)
	require.NoError(t, e.db.Model(s).Updates(map[string]interface{}{
		"is_active": active,
	}).Error)
	s.IsActive = active
	return s
}

func (e *testEnv) addAddon(t *testing.T, primary, addon *model.Service) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.ServiceAddon{
		ServiceID: primary.ID,
		AddonID:   addon.ID,
	}).Error)
}

func (e *testEnv) createSchedule(t *testing.T, doctor *model.Doctor, date, start, end string) *model.Schedule {
	t.Helper()
	s := &model.Schedule{
		DoctorID:  doctor.ID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *testEnv) createSlot(t *testing.T, schedule *model.Schedule, start, end string, available bool) *model.Slot {
	t.Helper()
	s := &model.Slot{
		ScheduleID:  schedule.ID,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: available,
	}
	require.NoError(t, e.db.Create(s).Error)
	require.NoError(t, e.db.Model(s).Updates(map[string]interface{}{
		"is_available": available,
	}).Error)
	s.IsAvailable = available
	return s
}

func (e *testEnv) reloadSlot(t *testing.T, id uuid.UUID) *model.Slot {
	t.Helper()
	var s model.Slot
	require.NoError(t, e.db.First(&s, "id = ?", id.String()).Error)
	return &s
}

func (e *testEnv) reloadAppointment(t *testing.T, id uuid.UUID) *model.Appointment {
	t.Helper()
	var a model.Appointment
	require.NoError(t, e.db.First(&a, "id = ?", id.String()).Error)
	return &a
}

// futureDate returns the date string n days from now in UTC; far enough out
// that the past-booking check never interferes.
func futureDate(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format("2006-01-02")
}
