package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vet-clinic-server/internal/metrics"
	"vet-clinic-server/internal/middleware"
	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/scheduler"
	"vet-clinic-server/internal/utils"
)

// AppointmentHandler exposes the scheduler over HTTP.
type AppointmentHandler struct {
	Scheduler *scheduler.Service
	Metrics   *metrics.Collector
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *scheduler.Service, m *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{Scheduler: svc, Metrics: m}
}

// respondSchedulerError maps scheduler errors onto HTTP responses. Unexpected
// errors stay opaque to the caller; detail lives in server-side logs only.
func respondSchedulerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduler.ErrPetNotFound),
		errors.Is(err, scheduler.ErrVetNotFound),
		errors.Is(err, scheduler.ErrAppointmentNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, scheduler.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, scheduler.ErrSlotTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, scheduler.ErrPastDate),
		errors.Is(err, scheduler.ErrAlreadyCancelled),
		errors.Is(err, scheduler.ErrCancelCompleted),
		errors.Is(err, scheduler.ErrUpdateCompleted),
		errors.Is(err, scheduler.ErrInvalidStatus),
		errors.Is(err, scheduler.ErrInvalidStatusTransition):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, "Internal server error")
	}
}

// CreateAppointmentRequest represents the request body for booking.
type CreateAppointmentRequest struct {
	PetID            uint      `json:"petId" binding:"required"`
	VeterinarianID   uint      `json:"veterinarianId" binding:"required"`
	ScheduledAt      time.Time `json:"scheduledAt" binding:"required"`
	ConsultationType string    `json:"consultationType" binding:"max=255"`
}

// CreateAppointment books an appointment for the authenticated client.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	view, err := h.Scheduler.Create(c.Request.Context(), clientID, scheduler.CreateInput{
		PetID:            req.PetID,
		VeterinarianID:   req.VeterinarianID,
		ScheduledAt:      req.ScheduledAt,
		ConsultationType: req.ConsultationType,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrSlotTaken) {
			h.Metrics.AppointmentsTotal.WithLabelValues("conflict").Inc()
		}
		respondSchedulerError(c, err)
		return
	}

	h.Metrics.AppointmentsTotal.WithLabelValues("created").Inc()
	utils.Created(c, "Appointment created successfully", view)
}

// ListAppointments returns the client's appointments, optionally filtered by
// status and pet.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var status *models.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseAppointmentStatus(raw)
		if !ok {
			utils.BadRequest(c, "Unknown status: "+raw)
			return
		}
		status = &parsed
	}

	var petID *uint
	if raw := c.Query("petId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid pet id")
			return
		}
		v := uint(id)
		petID = &v
	}

	views, err := h.Scheduler.List(c.Request.Context(), clientID, petID, status)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", views)
}

// GetAppointmentByID returns the full detail of one appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.Scheduler.Get(c.Request.Context(), clientID, id)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", detail)
}

// UpdateAppointmentRequest represents a partial appointment update.
type UpdateAppointmentRequest struct {
	ScheduledAt      *time.Time `json:"scheduledAt"`
	ConsultationType *string    `json:"consultationType" binding:"omitempty,max=255"`
	Status           *string    `json:"status"`
}

// UpdateAppointment applies a partial update to the client's appointment.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	view, err := h.Scheduler.Update(c.Request.Context(), clientID, id, scheduler.UpdateInput{
		ScheduledAt:      req.ScheduledAt,
		ConsultationType: req.ConsultationType,
		Status:           req.Status,
	})
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	utils.Success(c, "Appointment updated successfully", view)
}

// CancelAppointment cancels the client's appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.Scheduler.Cancel(c.Request.Context(), clientID, id)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	h.Metrics.AppointmentsTotal.WithLabelValues("cancelled").Inc()
	utils.Success(c, "Appointment cancelled successfully", gin.H{
		"message":     "Appointment cancelled successfully",
		"appointment": appointment,
	})
}

// GetAvailableSlots lists the free hourly slots of a veterinarian on a day.
func (h *AppointmentHandler) GetAvailableSlots(c *gin.Context) {
	rawVet := c.Query("veterinarian_id")
	rawDate := c.Query("date")
	if rawVet == "" || rawDate == "" {
		utils.BadRequest(c, "veterinarian_id and date are required")
		return
	}

	vetID, err := strconv.ParseUint(rawVet, 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid veterinarian id")
		return
	}

	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	listing, err := h.Scheduler.AvailableSlots(c.Request.Context(), uint(vetID), date)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	utils.Success(c, "Available slots fetched successfully", listing)
}

// pathID parses a numeric id path parameter, replying 400 on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
