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

// ProductHandler handles inventory stock requests.
type ProductHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(db *gorm.DB, log *zap.Logger) *ProductHandler {
	return &ProductHandler{DB: db, Log: log}
}

// CreateProductRequest represents the request body for registering a product.
type CreateProductRequest struct {
	Name     string     `json:"name" binding:"required,max=255"`
	Price    float64    `json:"price" binding:"required,gt=0"`
	Quantity int        `json:"quantity" binding:"gte=0"`
	Expiry   *time.Time `json:"expiry"`
}

// CreateProduct registers an inventory item. Product names are unique.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Product
	err := h.DB.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		h.Log.Warn("duplicate product registration", zap.String("name", req.Name))
		utils.BadRequest(c, "Product already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	product := models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
		Expiry:   req.Expiry,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "Product already exists")
			return
		}
		h.Log.Error("failed to create product", zap.Error(err), zap.String("name", req.Name))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("product registered", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	utils.Created(c, "Product registered successfully", product)
}

// GetProducts lists inventory items, with optional low-stock and
// expiring-soon filters.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	query := h.DB.Model(&models.Product{})

	if c.Query("lowStock") == "true" {
		query = query.Where("quantity <= ?", models.LowStockThreshold)
	}
	if c.Query("expiringSoon") == "true" {
		now := time.Now()
		query = query.Where("expiry >= ? AND expiry <= ?", now, now.AddDate(0, 0, 30))
	}

	var products []models.Product
	if err := query.Order("name asc").Find(&products).Error; err != nil {
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Products fetched successfully", products)
}

// GetProductByID returns one inventory item.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	utils.Success(c, "Product fetched successfully", product)
}

// UpdateProductRequest represents a partial product update.
type UpdateProductRequest struct {
	Name     *string    `json:"name" binding:"omitempty,max=255"`
	Price    *float64   `json:"price" binding:"omitempty,gt=0"`
	Quantity *int       `json:"quantity" binding:"omitempty,gte=0"`
	Expiry   *time.Time `json:"expiry"`
}

// UpdateProduct applies a partial update to an inventory item.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	var req UpdateProductRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Name != nil && *req.Name != product.Name {
		var existing models.Product
		err := h.DB.Where("name = ?", *req.Name).First(&existing).Error
		if err == nil {
			utils.BadRequest(c, "Product name already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Internal server error")
			return
		}
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.Expiry != nil {
		product.Expiry = req.Expiry
	}

	if err := h.DB.Save(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.BadRequest(c, "Product name already exists")
			return
		}
		h.Log.Error("failed to update product", zap.Error(err), zap.Uint("product_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("product updated", zap.Uint("product_id", id))
	utils.Success(c, "Product updated successfully", product)
}

// DeleteProduct removes an inventory item.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.InternalServerError(c, "Internal server error")
		return
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		h.Log.Error("failed to delete product", zap.Error(err), zap.Uint("product_id", id))
		utils.InternalServerError(c, "Internal server error")
		return
	}

	h.Log.Info("product deleted", zap.Uint("product_id", id), zap.String("name", product.Name))
	utils.Success(c, "Product deleted successfully", gin.H{"message": "Product deleted successfully"})
}
