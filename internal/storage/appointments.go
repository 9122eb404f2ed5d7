package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/scheduler"
)

// AppointmentRepository is the gorm implementation of scheduler.Repository.
type AppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new AppointmentRepository.
func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

var _ scheduler.Repository = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) PetByID(ctx context.Context, id uint) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduler.ErrPetNotFound
		}
		return nil, fmt.Errorf("loading pet: %w", err)
	}
	return &pet, nil
}

func (r *AppointmentRepository) VeterinarianByID(ctx context.Context, id uint) (*models.Veterinarian, error) {
	var vet models.Veterinarian
	if err := r.db.WithContext(ctx).First(&vet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduler.ErrVetNotFound
		}
		return nil, fmt.Errorf("loading veterinarian: %w", err)
	}
	return &vet, nil
}

func (r *AppointmentRepository) AppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduler.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) AppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Pet").
		Preload("Veterinarian").
		Preload("ClinicalRecords").
		First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduler.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("loading appointment detail: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Appointments(ctx context.Context, q scheduler.ListQuery) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})

	if q.ClientID != nil {
		query = query.Where("client_id = ?", *q.ClientID)
	}
	if q.PetID != nil {
		query = query.Where("pet_id = ?", *q.PetID)
	}
	if q.VeterinarianID != nil {
		query = query.Where("veterinarian_id = ?", *q.VeterinarianID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.From != nil {
		query = query.Where("scheduled_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("scheduled_at <= ?", *q.To)
	}

	order := "scheduled_at desc"
	if q.Ascending {
		order = "scheduled_at asc"
	}

	var appts []models.Appointment
	if err := query.Order(order).Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return appts, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduler.ErrSlotTaken
		}
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return scheduler.ErrSlotTaken
		}
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) HasConflict(ctx context.Context, vetID uint, at time.Time, excludeID *uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("veterinarian_id = ? AND scheduled_at = ? AND status <> ?", vetID, at, models.StatusCancelled)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("counting conflicts: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) BookedHours(ctx context.Context, vetID uint, from, to time.Time) ([]int, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("veterinarian_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status <> ?",
			vetID, from, to, models.StatusCancelled).
		Pluck("scheduled_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("loading booked hours: %w", err)
	}

	hours := make([]int, 0, len(times))
	for _, t := range times {
		hours = append(hours, t.In(from.Location()).Hour())
	}
	return hours, nil
}
