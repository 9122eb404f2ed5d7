package models

// ClinicalRecord holds the clinical history entry of a pet, optionally tied
// to the appointment it was produced in.
type ClinicalRecord struct {
	BaseModel
	PetID            uint   `gorm:"index;not null" json:"petId"`
	AppointmentID    *uint  `gorm:"index" json:"appointmentId,omitempty"`
	Vaccines         string `gorm:"type:text" json:"vaccines,omitempty"`
	DiseasesAllergies string `gorm:"type:text" json:"diseasesAllergies,omitempty"`
	Medications      string `gorm:"type:text" json:"medications,omitempty"`
	Observations     string `gorm:"type:text" json:"observations,omitempty"`

	// Relations
	Pet         Pet          `gorm:"foreignKey:PetID" json:"-"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
