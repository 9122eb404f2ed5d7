package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Client represents a pet owner account.
type Client struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	CPF          string     `gorm:"size:14" json:"cpf,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Street       string     `gorm:"size:255" json:"street,omitempty"`
	Number       string     `gorm:"size:20" json:"number,omitempty"`
	Complement   string     `gorm:"size:100" json:"complement,omitempty"`
	PostalCode   string     `gorm:"size:10" json:"postalCode,omitempty"`
	District     string     `gorm:"size:100" json:"district,omitempty"`
	City         string     `gorm:"size:100" json:"city,omitempty"`
	State        string     `gorm:"size:2" json:"state,omitempty"`

	// Relations (not always preloaded)
	Pets         []Pet         `gorm:"foreignKey:ClientID" json:"-"`
	Appointments []Appointment `gorm:"foreignKey:ClientID" json:"-"`
}

// SetPassword hashes a password and sets it on the client
func (c *Client) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the client's hashed password
func (c *Client) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return err == nil
}
