package models

// Veterinarian represents a clinic veterinarian.
type Veterinarian struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	CPF          string `gorm:"uniqueIndex;size:14;not null" json:"cpf,omitempty"`
	CRMV         string `gorm:"uniqueIndex;size:20;not null" json:"crmv"`
	Specialties  string `gorm:"size:255" json:"specialties,omitempty"`
	WorkingHours string `gorm:"size:255" json:"workingHours,omitempty"`

	// Relations
	Appointments []Appointment `gorm:"foreignKey:VeterinarianID" json:"-"`
}

// VeterinarianSummary is the denormalized vet view embedded in appointment responses.
type VeterinarianSummary struct {
	ID          uint   `json:"id,omitempty"`
	Name        string `json:"name"`
	CRMV        string `json:"crmv,omitempty"`
	Specialties string `json:"specialties,omitempty"`
}

// Summary returns the denormalized view of the veterinarian.
func (v *Veterinarian) Summary() VeterinarianSummary {
	return VeterinarianSummary{Name: v.Name, CRMV: v.CRMV, Specialties: v.Specialties}
}
