package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type AppointmentRepository interface {
	// WithTx returns a copy bound to tx so appointment writes join the
	// caller's transaction.
	WithTx(tx *gorm.DB) AppointmentRepository

	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Updates(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error

	// CountActive counts appointments occupying the doctor's date+time with a
	// non-terminal status. This is the double-booking guard query. excludeID
	// skips one appointment, so a reschedule does not collide with itself.
	CountActive(ctx context.Context, doctorID, date, clock string, statuses []model.AppointmentStatus, excludeID string) (int64, error)

	ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.Appointment, int64, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.Appointment, int64, error)
	// ListUnassigned lists appointments with neither doctor nor slot bound,
	// optionally filtered by status, newest first.
	ListUnassigned(ctx context.Context, status model.AppointmentStatus, limit, offset int) ([]model.Appointment, int64, error)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) WithTx(tx *gorm.DB) AppointmentRepository {
	return &GormAppointmentRepository{db: tx}
}

func (r *GormAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) Updates(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

func (r *GormAppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, "id = ?", id).Error
}

func (r *GormAppointmentRepository) CountActive(
	ctx context.Context,
	doctorID, date, clock string,
	statuses []model.AppointmentStatus,
	excludeID string,
) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("appointment_date = ?", date).
		Where("appointment_time = ?", clock).
		Where("status IN ?", statuses)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (r *GormAppointmentRepository) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]model.Appointment, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id = ?", doctorID), limit, offset)
}

func (r *GormAppointmentRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]model.Appointment, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("patient_id = ?", patientID), limit, offset)
}

func (r *GormAppointmentRepository) ListUnassigned(ctx context.Context, status model.AppointmentStatus, limit, offset int) ([]model.Appointment, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("doctor_id IS NULL").
		Where("slot_id IS NULL")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(ctx, q, limit, offset)
}

func (r *GormAppointmentRepository) list(ctx context.Context, q *gorm.DB, limit, offset int) ([]model.Appointment, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var appts []model.Appointment
	if err := q.Order("created_at DESC").Find(&appts).Error; err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}
