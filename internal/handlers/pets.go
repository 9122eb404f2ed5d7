package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/middleware"
	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/utils"
)

// PetHandler handles pet related requests.
type PetHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(db *gorm.DB, log *zap.Logger) *PetHandler {
	return &PetHandler{DB: db, Log: log}
}

// CreatePetRequest represents the request body for registering a pet.
type CreatePetRequest struct {
	Name      string     `json:"name" binding:"required,max=100"`
	Species   string     `json:"species" binding:"required,max=50"`
	Breed     string     `json:"breed" binding:"max=100"`
	Sex       string     `json:"sex" binding:"omitempty,oneof=male female"`
	BirthDate *time.Time `json:"birthDate"`
	ImageURL  string     `json:"imageUrl" binding:"omitempty,url"`
}

// CreatePet registers a pet for the authenticated client.
func (h *PetHandler) CreatePet(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreatePetRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pet := models.Pet{
		ClientID:  clientID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       req.Sex,
		BirthDate: req.BirthDate,
		ImageURL:  req.ImageURL,
	}

	if err := h.DB.Create(&pet).Error; err != nil {
		h.Log.Error("failed to create pet", zap.Error(err), zap.Uint("client_id", clientID))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("pet registered", zap.Uint("pet_id", pet.ID), zap.Uint("client_id", clientID), zap.String("name", pet.Name))
	utils.Created(c, "Pet registered successfully", pet)
}

// GetPets lists the authenticated client's pets, newest first.
func (h *PetHandler) GetPets(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var pets []models.Pet
	if err := h.DB.Where("client_id = ?", clientID).Order("created_at desc").Find(&pets).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Pets fetched successfully", pets)
}

// ownedPet loads a pet and verifies ownership, replying on failure.
func (h *PetHandler) ownedPet(c *gin.Context, clientID, petID uint) (*models.Pet, bool) {
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
		h.Log.Warn("unauthorized pet access",
			zap.Uint("pet_id", petID), zap.Uint("client_id", clientID), zap.Uint("owner_id", pet.ClientID))
		utils.Forbidden(c, "Access denied")
		return nil, false
	}
	return &pet, true
}

// GetPetByID returns one pet with its recent clinical records and appointments.
func (h *PetHandler) GetPetByID(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pet, ok := h.ownedPet(c, clientID, id)
	if !ok {
		return
	}

	var records []models.ClinicalRecord
	if err := h.DB.Where("pet_id = ?", pet.ID).Order("created_at desc").Limit(5).Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Preload("Veterinarian").
		Where("pet_id = ?", pet.ID).Order("scheduled_at desc").Limit(5).
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Pet fetched successfully", gin.H{
		"pet":                pet,
		"clinicalRecords":    records,
		"recentAppointments": appointments,
	})
}

// UpdatePetRequest represents a partial pet update.
type UpdatePetRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=100"`
	Species   *string    `json:"species" binding:"omitempty,max=50"`
	Breed     *string    `json:"breed" binding:"omitempty,max=100"`
	Sex       *string    `json:"sex" binding:"omitempty,oneof=male female"`
	BirthDate *time.Time `json:"birthDate"`
	ImageURL  *string    `json:"imageUrl" binding:"omitempty,url"`
}

// UpdatePet applies a partial update to the client's pet.
func (h *PetHandler) UpdatePet(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pet, ok := h.ownedPet(c, clientID, id)
	if !ok {
		return
	}

	var req UpdatePetRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Name != nil {
		pet.Name = *req.Name
	}
	if req.Species != nil {
		pet.Species = *req.Species
	}
	if req.Breed != nil {
		pet.Breed = *req.Breed
	}
	if req.Sex != nil {
		pet.Sex = *req.Sex
	}
	if req.BirthDate != nil {
		pet.BirthDate = req.BirthDate
	}
	if req.ImageURL != nil {
		pet.ImageURL = *req.ImageURL
	}

	if err := h.DB.Save(pet).Error; err != nil {
		h.Log.Error("failed to update pet", zap.Error(err), zap.Uint("pet_id", pet.ID))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("pet updated", zap.Uint("pet_id", pet.ID), zap.Uint("client_id", clientID))
	utils.Success(c, "Pet updated successfully", pet)
}

// DeletePet removes the client's pet.
func (h *PetHandler) DeletePet(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pet, ok := h.ownedPet(c, clientID, id)
	if !ok {
		return
	}

	if err := h.DB.Delete(pet).Error; err != nil {
		h.Log.Error("failed to delete pet", zap.Error(err), zap.Uint("pet_id", pet.ID))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("pet deleted", zap.Uint("pet_id", pet.ID), zap.Uint("client_id", clientID), zap.String("name", pet.Name))
	utils.Success(c, "Pet deleted successfully", gin.H{"message": "Pet deleted successfully"})
}
