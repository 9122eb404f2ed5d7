package scheduler

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vet-clinic-server/internal/models"
)

// fakeRepo is an in-memory Repository. Create and Update enforce the same
// uniqueness rule the database index does, so the race-window path is
// exercisable from tests.
type fakeRepo struct {
	pets   map[uint]models.Pet
	vets   map[uint]models.Veterinarian
	appts  map[uint]*models.Appointment
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pets: map[uint]models.Pet{
			1: {BaseModel: models.BaseModel{ID: 1}, ClientID: 1, Name: "Rex", Species: "Dog", Breed: "Labrador"},
			2: {BaseModel: models.BaseModel{ID: 2}, ClientID: 2, Name: "Mimi", Species: "Cat"},
		},
		vets: map[uint]models.Veterinarian{
			1: {BaseModel: models.BaseModel{ID: 1}, Name: "Dr. Silva", CRMV: "SP-12345", Specialties: "Dermatology"},
			2: {BaseModel: models.BaseModel{ID: 2}, Name: "Dr. Costa", CRMV: "SP-67890"},
		},
		appts: make(map[uint]*models.Appointment),
	}
}

func (r *fakeRepo) PetByID(_ context.Context, id uint) (*models.Pet, error) {
	p, ok := r.pets[id]
	if !ok {
		return nil, ErrPetNotFound
	}
	return &p, nil
}

func (r *fakeRepo) VeterinarianByID(_ context.Context, id uint) (*models.Veterinarian, error) {
	v, ok := r.vets[id]
	if !ok {
		return nil, ErrVetNotFound
	}
	return &v, nil
}

func (r *fakeRepo) AppointmentByID(_ context.Context, id uint) (*models.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeRepo) AppointmentDetail(ctx context.Context, id uint) (*models.Appointment, error) {
	a, err := r.AppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Pet = r.pets[a.PetID]
	a.Veterinarian = r.vets[a.VeterinarianID]
	return a, nil
}

func (r *fakeRepo) Appointments(_ context.Context, q ListQuery) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appts {
		if q.ClientID != nil && a.ClientID != *q.ClientID {
			continue
		}
		if q.PetID != nil && a.PetID != *q.PetID {
			continue
		}
		if q.VeterinarianID != nil && a.VeterinarianID != *q.VeterinarianID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		if q.From != nil && a.ScheduledAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !a.ScheduledAt.Before(*q.To) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Ascending {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[j].ScheduledAt.Before(out[i].ScheduledAt)
	})
	return out, nil
}

func (r *fakeRepo) Create(ctx context.Context, a *models.Appointment) error {
	if taken, _ := r.HasConflict(ctx, a.VeterinarianID, a.ScheduledAt, nil); taken && a.Status != models.StatusCancelled {
		return ErrSlotTaken
	}
	r.nextID++
	a.ID = r.nextID
	clone := *a
	r.appts[a.ID] = &clone
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, a *models.Appointment) error {
	if _, ok := r.appts[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	if taken, _ := r.HasConflict(ctx, a.VeterinarianID, a.ScheduledAt, &a.ID); taken && a.Status != models.StatusCancelled {
		return ErrSlotTaken
	}
	clone := *a
	r.appts[a.ID] = &clone
	return nil
}

func (r *fakeRepo) HasConflict(_ context.Context, vetID uint, at time.Time, excludeID *uint) (bool, error) {
	for _, a := range r.appts {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.VeterinarianID == vetID && a.ScheduledAt.Equal(at) && a.Status != models.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) BookedHours(_ context.Context, vetID uint, from, to time.Time) ([]int, error) {
	var hours []int
	for _, a := range r.appts {
		if a.VeterinarianID != vetID || a.Status == models.StatusCancelled {
			continue
		}
		if a.ScheduledAt.Before(from) || !a.ScheduledAt.Before(to) {
			continue
		}
		hours = append(hours, a.ScheduledAt.In(from.Location()).Hour())
	}
	return hours, nil
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	s := NewService(repo, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s
}

func tomorrowAt(hour int) time.Time {
	return time.Date(2025, 6, 11, hour, 0, 0, 0, time.UTC)
}

func TestCreate_Success(t *testing.T) {
	svc := newTestService(newFakeRepo())

	view, err := svc.Create(context.Background(), 1, CreateInput{
		PetID:            1,
		VeterinarianID:   1,
		ScheduledAt:      tomorrowAt(10),
		ConsultationType: "Routine checkup",
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, view.Status)
	assert.Equal(t, "Rex", view.Pet.Name)
	assert.Equal(t, "Dr. Silva", view.Veterinarian.Name)
	assert.NotZero(t, view.ID)
}

func TestCreate_SlotConflict(t *testing.T) {
	svc := newTestService(newFakeRepo())
	at := tomorrowAt(10)

	_, err := svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: at})
	require.NoError(t, err)

	// Other client, other pet, same veterinarian, same instant.
	_, err = svc.Create(context.Background(), 2, CreateInput{PetID: 2, VeterinarianID: 1, ScheduledAt: at})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreate_SameInstantOtherVet(t *testing.T) {
	svc := newTestService(newFakeRepo())
	at := tomorrowAt(10)

	_, err := svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: at})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 2, CreateInput{PetID: 2, VeterinarianID: 2, ScheduledAt: at})
	assert.NoError(t, err)
}

func TestCreate_CancelledSlotFreesUp(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	at := tomorrowAt(10)

	first, err := svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: at})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 1, first.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 2, CreateInput{PetID: 2, VeterinarianID: 1, ScheduledAt: at})
	assert.NoError(t, err)
}

func TestCreate_PastDateRejected(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, CreateInput{
		PetID:          1,
		VeterinarianID: 1,
		ScheduledAt:    testNow.Add(-24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestCreate_ExactlyNowRejected(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: testNow})
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: testNow.Add(time.Second)})
	assert.NoError(t, err)
}

func TestCreate_PetNotOwned(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, CreateInput{PetID: 2, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_UnknownPetAndVet(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), 1, CreateInput{PetID: 99, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	assert.ErrorIs(t, err, ErrPetNotFound)

	_, err = svc.Create(context.Background(), 1, CreateInput{PetID: 1, VeterinarianID: 99, ScheduledAt: tomorrowAt(10)})
	assert.ErrorIs(t, err, ErrVetNotFound)
}

func TestList_OwnAppointmentsMostRecentFirst(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(14)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, CreateInput{PetID: 2, VeterinarianID: 2, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	views, err := svc.List(ctx, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[1].ScheduledAt.Before(views[0].ScheduledAt))
	for _, v := range views {
		assert.Equal(t, uint(1), v.ClientID)
	}
}

func TestList_StatusFilter(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 1, first.ID)
	require.NoError(t, err)

	cancelled := models.StatusCancelled
	views, err := svc.List(ctx, 1, nil, &cancelled)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, first.ID, views[0].ID)
}

func TestGet_OwnershipEnforced(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", detail.Pet.Name)
	assert.Equal(t, "Dr. Silva", detail.Veterinarian.Name)

	_, err = svc.Get(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdate_Reschedule(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	newAt := tomorrowAt(15)
	view, err := svc.Update(ctx, 1, created.ID, UpdateInput{ScheduledAt: &newAt})
	require.NoError(t, err)
	assert.True(t, view.ScheduledAt.Equal(newAt))
}

func TestUpdate_RescheduleToOwnSlot(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	at := tomorrowAt(9)
	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: at})
	require.NoError(t, err)

	// Re-submitting the appointment's own time must not count as a conflict.
	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{ScheduledAt: &at})
	assert.NoError(t, err)
}

func TestUpdate_RescheduleConflict(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	second, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)

	taken := tomorrowAt(9)
	_, err = svc.Update(ctx, 1, second.ID, UpdateInput{ScheduledAt: &taken})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestUpdate_ReschedulePastDate(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	past := testNow.Add(-time.Hour)
	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{ScheduledAt: &past})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestUpdate_CompletedIsImmutable(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, created.ID, "Completed")
	require.NoError(t, err)

	other := "Follow-up"
	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{ConsultationType: &other})
	assert.ErrorIs(t, err, ErrUpdateCompleted)
}

func TestUpdate_StatusTransitions(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	bogus := "Pending"
	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	done := "Completed"
	view, err := svc.Update(ctx, 1, created.ID, UpdateInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, view.Status)
}

func TestUpdate_CancelledCannotBeRevived(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 1, created.ID)
	require.NoError(t, err)

	back := "Scheduled"
	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{Status: &back})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancel_Guards(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	a, err := svc.Cancel(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, a.Status)

	_, err = svc.Cancel(ctx, 1, created.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancel_CompletedRefused(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, created.ID, "Completed")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 1, created.ID)
	assert.ErrorIs(t, err, ErrCancelCompleted)
}

func TestSetStatus_LegacyLiteralAccepted(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	a, err := svc.SetStatus(ctx, created.ID, "Conclu_do")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, a.Status)
}

func TestSetStatus_SameStatusNoOp(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)

	a, err := svc.SetStatus(ctx, created.ID, "Scheduled")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, a.Status)
}

func TestSetStatus_TerminalRefused(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(9)})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, created.ID, "Completed")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, created.ID, "Scheduled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.SetStatus(ctx, created.ID, "Cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestAvailableSlots_ReflectsBookings(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)

	listing, err := svc.AvailableSlots(ctx, 1, tomorrowAt(0))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", listing.Date)
	assert.Equal(t, uint(1), listing.Veterinarian.ID)
	assert.Len(t, listing.Available, 9)
	assert.NotContains(t, listing.Available, "10:00")
}

func TestAvailableSlots_CancelledBookingFreesSlot(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 1, created.ID)
	require.NoError(t, err)

	listing, err := svc.AvailableSlots(ctx, 1, tomorrowAt(0))
	require.NoError(t, err)
	assert.Contains(t, listing.Available, "10:00")
	assert.Len(t, listing.Available, 10)
}

func TestAvailableSlots_OtherVetUnaffected(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)

	listing, err := svc.AvailableSlots(ctx, 2, tomorrowAt(0))
	require.NoError(t, err)
	assert.Len(t, listing.Available, 10)
}

func TestAvailableSlots_TimeOfDayIgnored(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{PetID: 1, VeterinarianID: 1, ScheduledAt: tomorrowAt(10)})
	require.NoError(t, err)

	listing, err := svc.AvailableSlots(ctx, 1, tomorrowAt(23).Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", listing.Date)
	assert.NotContains(t, listing.Available, "10:00")
}

func TestAvailableSlots_UnknownVet(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.AvailableSlots(context.Background(), 99, tomorrowAt(0))
	assert.ErrorIs(t, err, ErrVetNotFound)
}
