package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/middleware"
	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/utils"
)

// ClinicalRecordHandler handles clinical history requests.
type ClinicalRecordHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewClinicalRecordHandler creates a new ClinicalRecordHandler.
func NewClinicalRecordHandler(db *gorm.DB, log *zap.Logger) *ClinicalRecordHandler {
	return &ClinicalRecordHandler{DB: db, Log: log}
}

// CreateClinicalRecordRequest represents the request body for a new record.
type CreateClinicalRecordRequest struct {
	PetID             uint   `json:"petId" binding:"required"`
	AppointmentID     *uint  `json:"appointmentId"`
	Vaccines          string `json:"vaccines"`
	DiseasesAllergies string `json:"diseasesAllergies"`
	Medications       string `json:"medications"`
	Observations      string `json:"observations"`
}

// ownedPet loads a pet and verifies it belongs to the client, replying on failure.
func (h *ClinicalRecordHandler) ownedPet(c *gin.Context, clientID, petID uint) (*models.Pet, bool) {
	var pet models.Pet
	if err := h.DB.First(&pet, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Pet not found")
			return nil, false
		}
		utils.InternalServerError(c, "Internal server error")
		return nil, false
	}
	if pet.ClientID != clientID {
		h.Log.Warn("unauthorized clinical record access",
			zap.Uint("pet_id", petID), zap.Uint("client_id", clientID), zap.Uint("owner_id", pet.ClientID))
		utils.Forbidden(c, "Access denied")
		return nil, false
	}
	return &pet, true
}

// CreateClinicalRecord adds a clinical history entry for the client's pet.
// A linked appointment must exist and belong to the same pet.
func (h *ClinicalRecordHandler) CreateClinicalRecord(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateClinicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if _, ok := h.ownedPet(c, clientID, req.PetID); !ok {
		return
	}

	if req.AppointmentID != nil {
		var appointment models.Appointment
		if err := h.DB.First(&appointment, *req.AppointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFound(c, "Appointment not found")
				return
			}
			utils.InternalServerError(c, "Internal server error")
			return
		}
		if appointment.PetID != req.PetID {
			utils.BadRequest(c, "Appointment does not belong to this pet")
			return
		}
	}

	record := models.ClinicalRecord{
		PetID:             req.PetID,
		AppointmentID:     req.AppointmentID,
		Vaccines:          req.Vaccines,
		DiseasesAllergies: req.DiseasesAllergies,
		Medications:       req.Medications,
		Observations:      req.Observations,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		h.Log.Error("failed to create clinical record", zap.Error(err), zap.Uint("pet_id", req.PetID))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("clinical record created",
		zap.Uint("record_id", record.ID), zap.Uint("pet_id", req.PetID), zap.Uint("client_id", clientID))
	utils.Created(c, "Clinical record created successfully", record)
}

// GetRecordsByPet lists the clinical history of one pet, newest first.
func (h *ClinicalRecordHandler) GetRecordsByPet(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	petID, ok := pathID(c, "petId")
	if !ok {
		return
	}

	if _, ok := h.ownedPet(c, clientID, petID); !ok {
		return
	}

	var records []models.ClinicalRecord
	if err := h.DB.Preload("Appointment").
		Where("pet_id = ?", petID).Order("created_at desc").
		Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Clinical records fetched successfully", records)
}

// GetRecordByID returns one clinical record of a pet owned by the client.
func (h *ClinicalRecordHandler) GetRecordByID(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var record models.ClinicalRecord
	if err := h.DB.Preload("Pet").Preload("Appointment").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical record not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	if record.Pet.ClientID != clientID {
		h.Log.Warn("unauthorized clinical record access",
			zap.Uint("record_id", id), zap.Uint("client_id", clientID))
		utils.Forbidden(c, "Access denied")
		return
	}

	utils.Success(c, "Clinical record fetched successfully", record)
}

// UpdateClinicalRecordRequest represents a partial clinical record update.
type UpdateClinicalRecordRequest struct {
	Vaccines          *string `json:"vaccines"`
	DiseasesAllergies *string `json:"diseasesAllergies"`
	Medications       *string `json:"medications"`
	Observations      *string `json:"observations"`
}

// UpdateClinicalRecord applies a partial update to a record of the client's pet.
func (h *ClinicalRecordHandler) UpdateClinicalRecord(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var record models.ClinicalRecord
	if err := h.DB.Preload("Pet").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical record not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}
	if record.Pet.ClientID != clientID {
		utils.Forbidden(c, "Access denied")
		return
	}

	var req UpdateClinicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Vaccines != nil {
		record.Vaccines = *req.Vaccines
	}
	if req.DiseasesAllergies != nil {
		record.DiseasesAllergies = *req.DiseasesAllergies
	}
	if req.Medications != nil {
		record.Medications = *req.Medications
	}
	if req.Observations != nil {
		record.Observations = *req.Observations
	}

	if err := h.DB.Save(&record).Error; err != nil {
		h.Log.Error("failed to update clinical record", zap.Error(err), zap.Uint("record_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("clinical record updated", zap.Uint("record_id", id), zap.Uint("client_id", clientID))
	utils.Success(c, "Clinical record updated successfully", record)
}

// DeleteClinicalRecord removes a record of the client's pet.
func (h *ClinicalRecordHandler) DeleteClinicalRecord(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var record models.ClinicalRecord
	if err := h.DB.Preload("Pet").First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Clinical record not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}
	if record.Pet.ClientID != clientID {
		utils.Forbidden(c, "Access denied")
		return
	}

	if err := h.DB.Delete(&record).Error; err != nil {
		h.Log.Error("failed to delete clinical record", zap.Error(err), zap.Uint("record_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("clinical record deleted", zap.Uint("record_id", id), zap.Uint("client_id", clientID))
	utils.Success(c, "Clinical record deleted successfully", gin.H{"message": "Clinical record deleted successfully"})
}

// GetFullHistory returns a pet with its whole clinical history and recent
// appointments in one payload.
func (h *ClinicalRecordHandler) GetFullHistory(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	petID, ok := pathID(c, "petId")
	if !ok {
		return
	}

	pet, ok := h.ownedPet(c, clientID, petID)
	if !ok {
		return
	}

	var records []models.ClinicalRecord
	if err := h.DB.Preload("Appointment").Preload("Appointment.Veterinarian").
		Where("pet_id = ?", petID).Order("created_at desc").
		Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Veterinarian").
		Where("pet_id = ?", petID).Order("scheduled_at desc").Limit(10).
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Full history fetched successfully", gin.H{
		"pet":                pet,
		"clinicalRecords":    records,
		"recentAppointments": appointments,
	})
}
