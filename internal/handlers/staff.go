package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/scheduler"
	"vet-clinic-server/internal/utils"
)

// StaffHandler handles the attendant console: clinic-wide appointment views,
// status transitions and client lookups.
type StaffHandler struct {
	DB        *gorm.DB
	Scheduler *scheduler.Service
	Log       *zap.Logger
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(db *gorm.DB, svc *scheduler.Service, log *zap.Logger) *StaffHandler {
	return &StaffHandler{DB: db, Scheduler: svc, Log: log}
}

// GetAppointments lists appointments across all clients, filterable by day,
// status and veterinarian, earliest first.
func (h *StaffHandler) GetAppointments(c *gin.Context) {
	query := h.DB.Preload("Client").Preload("Pet").Preload("Veterinarian").
		Model(&models.Appointment{})

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("scheduled_at >= ? AND scheduled_at < ?", day, day.Add(24*time.Hour))
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseAppointmentStatus(raw)
		if !ok {
			utils.BadRequest(c, "Unknown status: "+raw)
			return
		}
		query = query.Where("status = ?", status)
	}
	if raw := c.Query("veterinarian_id"); raw != "" {
		vetID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid veterinarian id")
			return
		}
		query = query.Where("veterinarian_id = ?", uint(vetID))
	}

	var appointments []models.Appointment
	if err := query.Order("scheduled_at asc").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	type staffAppointment struct {
		models.Appointment
		Client struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		} `json:"client"`
		Pet          models.PetSummary          `json:"pet"`
		Veterinarian models.VeterinarianSummary `json:"veterinarian"`
	}

	out := make([]staffAppointment, 0, len(appointments))
	for _, a := range appointments {
		item := staffAppointment{Appointment: a}
		item.Client.ID = a.Client.ID
		item.Client.Name = a.Client.Name
		item.Client.Phone = a.Client.Phone
		item.Client.Email = a.Client.Email
		item.Pet = a.Pet.Summary()
		item.Veterinarian = a.Veterinarian.Summary()
		item.Veterinarian.ID = a.Veterinarian.ID
		out = append(out, item)
	}

	utils.Success(c, "Appointments fetched successfully", out)
}

// UpdateStatusRequest represents the request body for a staff status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAppointmentStatus moves an appointment through the status state
// machine on behalf of the clinic.
func (h *StaffHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Scheduler.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	h.Log.Info("appointment status updated by staff",
		zap.Uint("appointment_id", id), zap.String("status", string(appointment.Status)))
	utils.Success(c, "Appointment status updated successfully", appointment)
}

// GetClients lists clients with pet and appointment counts, searchable by
// name, email or phone.
func (h *StaffHandler) GetClients(c *gin.Context) {
	query := h.DB.Model(&models.Client{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR phone LIKE ?", like, like, like)
	}

	var clients []models.Client
	if err := query.Order("name asc").Find(&clients).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	type clientSummary struct {
		models.Client
		PetCount         int64 `json:"petCount"`
		AppointmentCount int64 `json:"appointmentCount"`
	}

	out := make([]clientSummary, 0, len(clients))
	for _, client := range clients {
		summary := clientSummary{Client: client}
		h.DB.Model(&models.Pet{}).Where("client_id = ?", client.ID).Count(&summary.PetCount)
		h.DB.Model(&models.Appointment{}).Where("client_id = ?", client.ID).Count(&summary.AppointmentCount)
		out = append(out, summary)
	}

	utils.Success(c, "Clients fetched successfully", out)
}

// GetClientByID returns one client with pets and appointment history.
func (h *StaffHandler) GetClientByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var client models.Client
	if err := h.DB.Preload("Pets").First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Client not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Pet").Preload("Veterinarian").
		Where("client_id = ?", id).Order("scheduled_at desc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Client fetched successfully", gin.H{
		"client":       client,
		"pets":         client.Pets,
		"appointments": appointments,
	})
}
