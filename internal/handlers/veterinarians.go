package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/utils"
)

// VeterinarianHandler exposes the veterinarian catalog used for booking.
type VeterinarianHandler struct {
	DB *gorm.DB
}

// NewVeterinarianHandler creates a new VeterinarianHandler.
func NewVeterinarianHandler(db *gorm.DB) *VeterinarianHandler {
	return &VeterinarianHandler{DB: db}
}

// GetVeterinarians lists veterinarians, optionally filtered by specialty.
func (h *VeterinarianHandler) GetVeterinarians(c *gin.Context) {
	query := h.DB.Model(&models.Veterinarian{})

	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialties ILIKE ?", "%"+specialty+"%")
	}

	var vets []models.Veterinarian
	if err := query.Order("name asc").Find(&vets).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Veterinarians fetched successfully", vets)
}

// GetVeterinarianByID returns one veterinarian.
func (h *VeterinarianHandler) GetVeterinarianByID(c *gin.Context) {
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

	utils.Success(c, "Veterinarian fetched successfully", vet)
}
