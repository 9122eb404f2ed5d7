package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/utils"
)

// AdminHandler handles the administrator console: veterinarian management,
// dashboards and reports.
type AdminHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, log *zap.Logger) *AdminHandler {
	return &AdminHandler{DB: db, Log: log}
}

// VeterinarianRequest represents the request body for creating or updating a
// veterinarian.
type VeterinarianRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	CPF          string `json:"cpf" binding:"required,max=14"`
	CRMV         string `json:"crmv" binding:"required,max=20"`
	Specialties  string `json:"specialties" binding:"max=255"`
	WorkingHours string `json:"workingHours" binding:"max=255"`
}

// CreateVeterinarian registers a veterinarian. CPF and CRMV are unique.
func (h *AdminHandler) CreateVeterinarian(c *gin.Context) {
	var req VeterinarianRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Veterinarian
	if err := h.DB.Where("cpf = ?", req.CPF).First(&existing).Error; err == nil {
		utils.BadRequest(c, "CPF already registered")
		return
	}
	if err := h.DB.Where("crmv = ?", req.CRMV).First(&existing).Error; err == nil {
		utils.BadRequest(c, "CRMV already registered")
		return
	}

	vet := models.Veterinarian{
		Name:         req.Name,
		CPF:          req.CPF,
		CRMV:         req.CRMV,
		Specialties:  req.Specialties,
		WorkingHours: req.WorkingHours,
	}

	if err := h.DB.Create(&vet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "CPF or CRMV already registered")
			return
		}
		h.Log.Error("failed to create veterinarian", zap.Error(err))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("veterinarian created", zap.Uint("veterinarian_id", vet.ID), zap.String("name", vet.Name))
	utils.Created(c, "Veterinarian created successfully", vet)
}

// GetVeterinarians lists veterinarians with their appointment counts.
func (h *AdminHandler) GetVeterinarians(c *gin.Context) {
	var vets []models.Veterinarian
	if err := h.DB.Order("name asc").Find(&vets).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	type vetWithCount struct {
		models.Veterinarian
		AppointmentCount int64 `json:"appointmentCount"`
	}

	out := make([]vetWithCount, 0, len(vets))
	for _, vet := range vets {
		item := vetWithCount{Veterinarian: vet}
		h.DB.Model(&models.Appointment{}).Where("veterinarian_id = ?", vet.ID).Count(&item.AppointmentCount)
		out = append(out, item)
	}

	utils.Success(c, "Veterinarians fetched successfully", out)
}

// UpdateVeterinarian updates a veterinarian, keeping CPF and CRMV unique.
func (h *AdminHandler) UpdateVeterinarian(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var vet models.Veterinarian
	if err := h.DB.First(&vet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Veterinarian not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var req VeterinarianRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.CPF != vet.CPF {
		var existing models.Veterinarian
		if err := h.DB.Where("cpf = ?", req.CPF).First(&existing).Error; err == nil {
			utils.BadRequest(c, "CPF already registered")
			return
		}
	}
	if req.CRMV != vet.CRMV {
		var existing models.Veterinarian
		if err := h.DB.Where("crmv = ?", req.CRMV).First(&existing).Error; err == nil {
			utils.BadRequest(c, "CRMV already registered")
			return
		}
	}

	vet.Name = req.Name
	vet.CPF = req.CPF
	vet.CRMV = req.CRMV
	vet.Specialties = req.Specialties
	vet.WorkingHours = req.WorkingHours

	if err := h.DB.Save(&vet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "CPF or CRMV already registered")
			return
		}
		h.Log.Error("failed to update veterinarian", zap.Error(err), zap.Uint("veterinarian_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("veterinarian updated", zap.Uint("veterinarian_id", id))
	utils.Success(c, "Veterinarian updated successfully", vet)
}

// DeleteVeterinarian removes a veterinarian without appointments. Deletion is
// refused while any appointment still references the veterinarian.
func (h *AdminHandler) DeleteVeterinarian(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var vet models.Veterinarian
	if err := h.DB.First(&vet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Veterinarian not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Appointment{}).Where("veterinarian_id = ?", id).Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}
	if count > 0 {
		utils.BadRequest(c, "Cannot delete a veterinarian with linked appointments")
		return
	}

	if err := h.DB.Delete(&vet).Error; err != nil {
		h.Log.Error("failed to delete veterinarian", zap.Error(err), zap.Uint("veterinarian_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("veterinarian deleted", zap.Uint("veterinarian_id", id), zap.String("name", vet.Name))
	utils.Success(c, "Veterinarian deleted successfully", gin.H{"message": "Veterinarian deleted successfully"})
}

// GetDashboard returns clinic-wide counters for the admin overview.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	var (
		totalClients      int64
		totalPets         int64
		totalAppointments int64
		appointmentsToday int64
		totalVets         int64
		totalProducts     int64
		lowStockProducts  int64
	)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	h.DB.Model(&models.Client{}).Count(&totalClients)
	h.DB.Model(&models.Pet{}).Count(&totalPets)
	h.DB.Model(&models.Appointment{}).Count(&totalAppointments)
	h.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayStart.Add(24*time.Hour)).
		Count(&appointmentsToday)
	h.DB.Model(&models.Veterinarian{}).Count(&totalVets)
	h.DB.Model(&models.Product{}).Count(&totalProducts)
	h.DB.Model(&models.Product{}).Where("quantity < ?", models.LowStockThreshold).Count(&lowStockProducts)

	type statusCount struct {
		Status models.AppointmentStatus `json:"status"`
		Count  int64                    `json:"count"`
	}
	var byStatus []statusCount
	if err := h.DB.Model(&models.Appointment{}).
		Select("status, count(*) as count").Group("status").
		Scan(&byStatus).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Dashboard fetched successfully", gin.H{
		"totalClients":         totalClients,
		"totalPets":            totalPets,
		"totalAppointments":    totalAppointments,
		"appointmentsToday":    appointmentsToday,
		"totalVeterinarians":   totalVets,
		"totalProducts":        totalProducts,
		"lowStockProducts":     lowStockProducts,
		"appointmentsByStatus": byStatus,
	})
}

// GetReport returns period aggregates: new clients and pets, completed
// appointments, stock value and the busiest veterinarians.
func (h *AdminHandler) GetReport(c *gin.Context) {
	query := func(model any) *gorm.DB {
		q := h.DB.Model(model)
		from, to := c.Query("from"), c.Query("to")
		if from != "" && to != "" {
			fromDate, err1 := time.Parse("2006-01-02", from)
			toDate, err2 := time.Parse("2006-01-02", to)
			if err1 == nil && err2 == nil {
				q = q.Where("created_at >= ? AND created_at <= ?", fromDate, toDate.Add(24*time.Hour))
			}
		}
		return q
	}

	var newClients, newPets, completedAppointments int64
	query(&models.Client{}).Count(&newClients)
	query(&models.Pet{}).Count(&newPets)
	query(&models.Appointment{}).Where("status = ?", models.StatusCompleted).Count(&completedAppointments)

	var stockValue float64
	h.DB.Model(&models.Product{}).Select("coalesce(sum(price * quantity), 0)").Scan(&stockValue)

	type topVet struct {
		ID               uint   `json:"id"`
		Name             string `json:"name"`
		AppointmentCount int64  `json:"appointmentCount"`
	}
	var topVets []topVet
	if err := h.DB.Model(&models.Veterinarian{}).
		Select("veterinarians.id, veterinarians.name, count(appointments.id) as appointment_count").
		Joins("LEFT JOIN appointments ON appointments.veterinarian_id = veterinarians.id").
		Group("veterinarians.id, veterinarians.name").
		Order("appointment_count desc").
		Limit(5).
		Scan(&topVets).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Report generated successfully", gin.H{
		"period":                gin.H{"from": c.Query("from"), "to": c.Query("to")},
		"newClients":            newClients,
		"newPets":               newPets,
		"completedAppointments": completedAppointments,
		"totalStockValue":       stockValue,
		"topVeterinarians":      topVets,
	})
}
