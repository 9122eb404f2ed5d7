package models

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN string
}

// Booking uniqueness is enforced by the database: two non-cancelled
// appointments may never share a (veterinarian, instant) pair, no matter how
// the application-level conflict check races.
const uniqueActiveSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_vet_slot_active
ON appointments (veterinarian_id, scheduled_at)
WHERE status <> 'Cancelled'`

// InitDB initializes the database connection and runs migrations.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Client{},
		&Attendant{},
		&Administrator{},
		&Veterinarian{},
		&Pet{},
		&Appointment{},
		&ClinicalRecord{},
		&Product{},
	)
	if err != nil {
		return nil, err
	}

	if err := db.Exec(uniqueActiveSlotIndex).Error; err != nil {
		return nil, err
	}

	return db, nil
}
