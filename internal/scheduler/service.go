package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vet-clinic-server/internal/models"
)

// Service mediates all state changes to appointments and answers
// slot-availability queries. It owns two invariants: a veterinarian never has
// two non-cancelled appointments at the same instant, and terminal
// appointments never change.
type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewService creates a scheduler service backed by the given repository.
func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// CreateInput carries the client-supplied fields of a new appointment.
type CreateInput struct {
	PetID            uint
	VeterinarianID   uint
	ScheduledAt      time.Time
	ConsultationType string
}

// UpdateInput carries a partial appointment update. Nil fields keep their
// prior values.
type UpdateInput struct {
	ScheduledAt      *time.Time
	ConsultationType *string
	Status           *string
}

// AppointmentView is an appointment with pet and veterinarian summaries
// denormalized into the response. The summaries are a read-side join, never
// stored.
type AppointmentView struct {
	models.Appointment
	Pet          models.PetSummary          `json:"pet"`
	Veterinarian models.VeterinarianSummary `json:"veterinarian"`
}

// AppointmentDetail is the full single-appointment view including the linked
// clinical records.
type AppointmentDetail struct {
	models.Appointment
	Pet             models.Pet              `json:"pet"`
	Veterinarian    models.Veterinarian     `json:"veterinarian"`
	ClinicalRecords []models.ClinicalRecord `json:"clinicalRecords"`
}

// SlotListing is the result of an availability query for one day.
type SlotListing struct {
	Veterinarian models.VeterinarianSummary `json:"veterinarian"`
	Date         string                     `json:"date"`
	Available    []string                   `json:"available"`
}

// Create books a new appointment for the client. The pet must belong to the
// client, the veterinarian must exist, the instant must be strictly in the
// future and the slot must be free.
func (s *Service) Create(ctx context.Context, clientID uint, in CreateInput) (*AppointmentView, error) {
	pet, err := s.repo.PetByID(ctx, in.PetID)
	if err != nil {
		return nil, err
	}
	if pet.ClientID != clientID {
		s.log.Warn("attempt to book for another client's pet",
			zap.Uint("pet_id", in.PetID), zap.Uint("client_id", clientID), zap.Uint("owner_id", pet.ClientID))
		return nil, ErrForbidden
	}

	vet, err := s.repo.VeterinarianByID(ctx, in.VeterinarianID)
	if err != nil {
		return nil, err
	}

	if !in.ScheduledAt.After(s.now()) {
		return nil, ErrPastDate
	}

	conflict, err := s.repo.HasConflict(ctx, in.VeterinarianID, in.ScheduledAt, nil)
	if err != nil {
		return nil, fmt.Errorf("checking conflicts: %w", err)
	}
	if conflict {
		return nil, ErrSlotTaken
	}

	a := &models.Appointment{
		ClientID:         clientID,
		PetID:            in.PetID,
		VeterinarianID:   in.VeterinarianID,
		ScheduledAt:      in.ScheduledAt,
		ConsultationType: in.ConsultationType,
		Status:           models.StatusScheduled,
	}

	// The partial unique index closes the window between the conflict check
	// and the insert; a racing write surfaces here as ErrSlotTaken.
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.log.Info("appointment created",
		zap.Uint("appointment_id", a.ID), zap.Uint("client_id", clientID), zap.Uint("veterinarian_id", in.VeterinarianID))

	return &AppointmentView{Appointment: *a, Pet: pet.Summary(), Veterinarian: vet.Summary()}, nil
}

// List returns the client's appointments matching the optional filters,
// most recent first.
func (s *Service) List(ctx context.Context, clientID uint, petID *uint, status *models.AppointmentStatus) ([]AppointmentView, error) {
	q := ListQuery{ClientID: &clientID, PetID: petID, Status: status}
	appts, err := s.repo.Appointments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return s.toViews(ctx, appts)
}

// ListAll returns appointments across all clients; the staff listing path.
func (s *Service) ListAll(ctx context.Context, q ListQuery) ([]AppointmentView, error) {
	appts, err := s.repo.Appointments(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return s.toViews(ctx, appts)
}

// Get returns the full detail of one appointment owned by the client.
func (s *Service) Get(ctx context.Context, clientID, id uint) (*AppointmentDetail, error) {
	a, err := s.repo.AppointmentDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClientID != clientID {
		s.log.Warn("unauthorized appointment access",
			zap.Uint("appointment_id", id), zap.Uint("client_id", clientID), zap.Uint("owner_id", a.ClientID))
		return nil, ErrForbidden
	}
	return &AppointmentDetail{
		Appointment:     *a,
		Pet:             a.Pet,
		Veterinarian:    a.Veterinarian,
		ClinicalRecords: a.ClinicalRecords,
	}, nil
}

// Update applies a partial update to a non-completed appointment owned by the
// client. A new time is validated against the future-date rule and re-checked
// for conflicts against the same veterinarian, excluding the appointment
// itself.
func (s *Service) Update(ctx context.Context, clientID, id uint, in UpdateInput) (*AppointmentView, error) {
	a, err := s.repo.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClientID != clientID {
		s.log.Warn("unauthorized appointment update",
			zap.Uint("appointment_id", id), zap.Uint("client_id", clientID), zap.Uint("owner_id", a.ClientID))
		return nil, ErrForbidden
	}
	if a.Status == models.StatusCompleted {
		return nil, ErrUpdateCompleted
	}

	if in.ScheduledAt != nil {
		if !in.ScheduledAt.After(s.now()) {
			return nil, ErrPastDate
		}
		conflict, err := s.repo.HasConflict(ctx, a.VeterinarianID, *in.ScheduledAt, &a.ID)
		if err != nil {
			return nil, fmt.Errorf("checking conflicts: %w", err)
		}
		if conflict {
			return nil, ErrSlotTaken
		}
		a.ScheduledAt = *in.ScheduledAt
	}
	if in.ConsultationType != nil {
		a.ConsultationType = *in.ConsultationType
	}
	if in.Status != nil {
		status, ok := models.ParseAppointmentStatus(*in.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		if status != a.Status {
			if !a.Status.CanTransitionTo(status) {
				return nil, ErrInvalidStatusTransition
			}
			a.Status = status
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	s.log.Info("appointment updated", zap.Uint("appointment_id", id), zap.Uint("client_id", clientID))
	return s.toView(ctx, a)
}

// Cancel moves the client's appointment to Cancelled. Cancellation is the
// deletion substitute; appointments are never removed.
func (s *Service) Cancel(ctx context.Context, clientID, id uint) (*models.Appointment, error) {
	a, err := s.repo.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ClientID != clientID {
		s.log.Warn("unauthorized appointment cancellation",
			zap.Uint("appointment_id", id), zap.Uint("client_id", clientID), zap.Uint("owner_id", a.ClientID))
		return nil, ErrForbidden
	}
	if a.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if a.Status == models.StatusCompleted {
		return nil, ErrCancelCompleted
	}

	a.Status = models.StatusCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("cancelling appointment: %w", err)
	}

	s.log.Info("appointment cancelled", zap.Uint("appointment_id", id), zap.Uint("client_id", clientID))
	return a, nil
}

// SetStatus is the staff path through the same state machine; it carries no
// ownership check.
func (s *Service) SetStatus(ctx context.Context, id uint, status string) (*models.Appointment, error) {
	a, err := s.repo.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := models.ParseAppointmentStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	if next == a.Status {
		return a, nil
	}
	if !a.Status.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	a.Status = next
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.log.Info("appointment status changed", zap.Uint("appointment_id", id), zap.String("status", string(next)))
	return a, nil
}

// AvailableSlots lists the free hourly slots of a veterinarian on a calendar
// day. The time-of-day component of date is ignored. Past dates are not
// rejected here; creation is the enforcement point.
func (s *Service) AvailableSlots(ctx context.Context, vetID uint, date time.Time) (*SlotListing, error) {
	vet, err := s.repo.VeterinarianByID(ctx, vetID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	booked, err := s.repo.BookedHours(ctx, vetID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("loading booked hours: %w", err)
	}

	summary := vet.Summary()
	summary.ID = vet.ID

	return &SlotListing{
		Veterinarian: summary,
		Date:         dayStart.Format("2006-01-02"),
		Available:    availableSlots(booked),
	}, nil
}

func (s *Service) toView(ctx context.Context, a *models.Appointment) (*AppointmentView, error) {
	views, err := s.toViews(ctx, []models.Appointment{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews joins pet and veterinarian summaries onto the appointments,
// reusing lookups across rows.
func (s *Service) toViews(ctx context.Context, appts []models.Appointment) ([]AppointmentView, error) {
	pets := make(map[uint]models.PetSummary)
	vets := make(map[uint]models.VeterinarianSummary)

	views := make([]AppointmentView, 0, len(appts))
	for _, a := range appts {
		if _, ok := pets[a.PetID]; !ok {
			pet, err := s.repo.PetByID(ctx, a.PetID)
			if err != nil {
				return nil, fmt.Errorf("loading pet %d: %w", a.PetID, err)
			}
			pets[a.PetID] = pet.Summary()
		}
		if _, ok := vets[a.VeterinarianID]; !ok {
			vet, err := s.repo.VeterinarianByID(ctx, a.VeterinarianID)
			if err != nil {
				return nil, fmt.Errorf("loading veterinarian %d: %w", a.VeterinarianID, err)
			}
			vets[a.VeterinarianID] = vet.Summary()
		}
		views = append(views, AppointmentView{
			Appointment:  a,
			Pet:          pets[a.PetID],
			Veterinarian: vets[a.VeterinarianID],
		})
	}
	return views, nil
}
