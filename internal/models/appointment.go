package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// legacyStatuses maps status literals found in pre-migration data to their
// canonical value. The mangled "Conclu_do" spelling appears alongside the
// accented form in older rows.
var legacyStatuses = map[string]AppointmentStatus{
	"Agendado":  StatusScheduled,
	"Concluído": StatusCompleted,
	"Conclu_do": StatusCompleted,
	"Cancelado": StatusCancelled,
}

// ParseAppointmentStatus resolves a status literal, accepting legacy spellings.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return AppointmentStatus(s), true
	}
	if canonical, ok := legacyStatuses[s]; ok {
		return canonical, true
	}
	return "", false
}

// IsTerminal reports whether no further mutation of the appointment is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the status state machine permits the move.
// Terminal states permit nothing.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled: {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Appointment represents a scheduled consultation for a pet.
type Appointment struct {
	BaseModel
	ClientID         uint              `gorm:"index;not null" json:"clientId"`
	PetID            uint              `gorm:"index;not null" json:"petId"`
	VeterinarianID   uint              `gorm:"index;not null" json:"veterinarianId"`
	ScheduledAt      time.Time         `gorm:"index;not null" json:"scheduledAt"`
	ConsultationType string            `gorm:"size:255" json:"consultationType,omitempty"`
	Status           AppointmentStatus `gorm:"size:20;default:'Scheduled'" json:"status"`

	// Relations
	Client          Client           `gorm:"foreignKey:ClientID" json:"-"`
	Pet             Pet              `gorm:"foreignKey:PetID" json:"-"`
	Veterinarian    Veterinarian     `gorm:"foreignKey:VeterinarianID" json:"-"`
	ClinicalRecords []ClinicalRecord `gorm:"foreignKey:AppointmentID" json:"-"`
}

// AfterFind normalizes legacy status literals left over from the data migration.
func (a *Appointment) AfterFind(_ *gorm.DB) error {
	if canonical, ok := legacyStatuses[string(a.Status)]; ok {
		a.Status = canonical
	}
	return nil
}
