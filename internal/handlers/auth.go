package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/config"
	"vet-clinic-server/internal/middleware"
	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/utils"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Log: log}
}

// RegisterRequest represents the request body for client registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request body for any login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) tokenExpiration() time.Duration {
	return time.Duration(h.Cfg.JWTExpirationHours) * time.Hour
}

// Register creates a new client account and returns an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Client
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		h.Log.Warn("registration with existing email", zap.String("email", req.Email))
		utils.BadRequest(c, "User already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	client := models.Client{Name: req.Name, Phone: req.Phone, Email: req.Email}
	if err := client.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	if err := h.DB.Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "User already exists")
			return
		}
		h.Log.Error("failed to create client", zap.Error(err))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	token, err := utils.GenerateToken(client.ID, models.RoleClient, h.Cfg.JWTSecret, h.tokenExpiration())
	if err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("client registered", zap.Uint("client_id", client.ID), zap.String("email", client.Email))
	utils.Created(c, "Account created successfully", gin.H{"token": token})
}

// Login authenticates a client and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var client models.Client
	if err := h.DB.Where("email = ?", req.Email).First(&client).Error; err != nil {
		h.Log.Warn("login with unknown email", zap.String("email", req.Email), zap.String("ip", c.ClientIP()))
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	if !client.CheckPassword(req.Password) {
		h.Log.Warn("login with invalid password", zap.String("email", req.Email), zap.String("ip", c.ClientIP()))
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(client.ID, models.RoleClient, h.Cfg.JWTSecret, h.tokenExpiration())
	if err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("client logged in", zap.Uint("client_id", client.ID), zap.String("email", client.Email))
	utils.Success(c, "Login successful", gin.H{"token": token})
}

// StaffLogin authenticates an attendant and returns an access token.
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var attendant models.Attendant
	if err := h.DB.Where("email = ?", req.Email).First(&attendant).Error; err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if !attendant.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(attendant.ID, models.RoleStaff, h.Cfg.JWTSecret, h.tokenExpiration())
	if err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("attendant logged in", zap.Uint("attendant_id", attendant.ID), zap.String("email", attendant.Email))
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"attendant": gin.H{
			"id":    attendant.ID,
			"name":  attendant.Name,
			"email": attendant.Email,
		},
	})
}

// AdminLogin authenticates an administrator and returns an access token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var admin models.Administrator
	if err := h.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}
	if !admin.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(admin.ID, models.RoleAdmin, h.Cfg.JWTSecret, h.tokenExpiration())
	if err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("admin logged in", zap.Uint("admin_id", admin.ID), zap.String("email", admin.Email))
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}

// GetProfile returns the authenticated client's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	clientID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var client models.Client
	if err := h.DB.First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Profile fetched successfully", gin.H{
		"id":    client.ID,
		"name":  client.Name,
		"email": client.Email,
		"phone": client.Phone,
	})
}
