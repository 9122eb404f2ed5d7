package scheduler

import (
	"context"
	"time"

	"vet-clinic-server/internal/models"
)

// ListQuery filters an appointment listing. Nil fields are not applied.
type ListQuery struct {
	ClientID       *uint
	PetID          *uint
	VeterinarianID *uint
	Status         *models.AppointmentStatus
	From           *time.Time
	To             *time.Time

	// Ascending orders by scheduled time ascending; the default is descending
	// (most recent first), which is what client listings use.
	Ascending bool
}

// Repository is the persistence adapter the scheduler operates through.
// Implementations map their not-found conditions to the package sentinel
// errors and duplicate-slot writes to ErrSlotTaken.
type Repository interface {
	PetByID(ctx context.Context, id uint) (*models.Pet, error)
	VeterinarianByID(ctx context.Context, id uint) (*models.Veterinarian, error)

	AppointmentByID(ctx context.Context, id uint) (*models.Appointment, error)
	// AppointmentDetail loads the appointment with pet, veterinarian and
	// clinical records attached.
	AppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error)
	Appointments(ctx context.Context, q ListQuery) ([]models.Appointment, error)

	Create(ctx context.Context, a *models.Appointment) error
	Update(ctx context.Context, a *models.Appointment) error

	// HasConflict reports whether the veterinarian already has a non-cancelled
	// appointment at the exact instant, excluding the given appointment id.
	HasConflict(ctx context.Context, vetID uint, at time.Time, excludeID *uint) (bool, error)

	// BookedHours returns the hour-of-day of every non-cancelled appointment
	// for the veterinarian within [from, to).
	BookedHours(ctx context.Context, vetID uint, from, to time.Time) ([]int, error)
}
