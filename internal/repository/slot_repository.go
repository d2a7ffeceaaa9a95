package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicore/booking/internal/model"
)

// Candidate is one bookable (doctor, slot) pair for an unassigned appointment.
type Candidate struct {
	Doctor model.Doctor
	Slot   model.Slot
}

type SlotRepository interface {
	// WithTx returns a copy of the repository bound to tx so slot writes
	// join the caller's transaction.
	WithTx(tx *gorm.DB) SlotRepository

	GetByID(ctx context.Context, id string) (*model.Slot, error)
	// GetByIDLocked reads the slot under a row lock (FOR UPDATE) where the
	// dialect supports it. Claim/release paths use this so two transactions
	// racing for the same slot serialize on the row.
	GetByIDLocked(ctx context.Context, id string) (*model.Slot, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	CreateBatch(ctx context.Context, slots []model.Slot) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Slot, error)
	ListFreeByDoctorDate(ctx context.Context, doctorID, date string) ([]model.Slot, error)
	// ListCandidates finds available slots starting exactly at startTime on
	// date, across all doctors that are active and accepting bookings.
	ListCandidates(ctx context.Context, date, startTime string) ([]Candidate, error)
}

type GormSlotRepository struct {
	db *gorm.DB
}

func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

func (r *GormSlotRepository) WithTx(tx *gorm.DB) SlotRepository {
	return &GormSlotRepository{db: tx}
}

func (r *GormSlotRepository) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	var slot model.Slot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormSlotRepository) GetByIDLocked(ctx context.Context, id string) (*model.Slot, error) {
	q := r.db.WithContext(ctx)
	// sqlite (used in tests) is single-writer and rejects FOR UPDATE.
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var slot model.Slot
	if err := q.First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormSlotRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ?", id).
		Update("is_available", available).
		Error
}

func (r *GormSlotRepository) CreateBatch(ctx context.Context, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&slots).Error
}

func (r *GormSlotRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormSlotRepository) ListFreeByDoctorDate(ctx context.Context, doctorID, date string) ([]model.Slot, error) {
	var slots []model.Slot
	err := r.db.WithContext(ctx).
		Table("slots").
		Select("slots.*").
		Joins("JOIN schedules ON schedules.id = slots.schedule_id").
		Where("schedules.doctor_id = ? AND schedules.date = ?", doctorID, date).
		Where("slots.is_available = ?", true).
		Order("slots.start_time ASC").
		Scan(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

type candidateRow struct {
	ID          uuid.UUID
	ScheduleID  uuid.UUID
	StartTime   string
	EndTime     string
	IsAvailable bool
	DoctorID    uuid.UUID
}

func (r *GormSlotRepository) ListCandidates(ctx context.Context, date, startTime string) ([]Candidate, error) {
	var rows []candidateRow
	err := r.db.WithContext(ctx).
		Table("slots").
		Select("slots.id, slots.schedule_id, slots.start_time, slots.end_time, slots.is_available, schedules.doctor_id").
		Joins("JOIN schedules ON schedules.id = slots.schedule_id").
		Joins("JOIN doctors ON doctors.id = schedules.doctor_id").
		Where("schedules.date = ?", date).
		Where("slots.start_time = ?", startTime).
		Where("slots.is_available = ?", true).
		Where("doctors.is_active = ? AND doctors.is_available = ?", true, true).
		Order("doctors.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Candidate{}, nil
	}

	doctorIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		doctorIDs = append(doctorIDs, row.DoctorID)
	}
	var doctors []model.Doctor
	if err := r.db.WithContext(ctx).Where("id IN ?", doctorIDs).Find(&doctors).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Doctor, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			Doctor: byID[row.DoctorID],
			Slot: model.Slot{
				ID:          row.ID,
				ScheduleID:  row.ScheduleID,
				StartTime:   row.StartTime,
				EndTime:     row.EndTime,
				IsAvailable: row.IsAvailable,
			},
		})
	}
	return candidates, nil
}
