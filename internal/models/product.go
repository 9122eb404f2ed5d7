package models

import "time"

// Product represents an inventory stock item.
type Product struct {
	BaseModel
	Name     string     `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Price    float64    `gorm:"not null" json:"price"`
	Quantity int        `gorm:"default:0" json:"quantity"`
	Expiry   *time.Time `json:"expiry,omitempty"`
}

// LowStockThreshold is the quantity below which a product counts as low stock.
const LowStockThreshold = 10
