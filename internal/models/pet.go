package models

import "time"

// Pet represents an animal registered by a client.
type Pet struct {
	BaseModel
	ClientID  uint       `gorm:"index;not null" json:"clientId"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Species   string     `gorm:"size:50;not null" json:"species"`
	Breed     string     `gorm:"size:100" json:"breed,omitempty"`
	Sex       string     `gorm:"size:10" json:"sex,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	ImageURL  string     `gorm:"size:512" json:"imageUrl,omitempty"`

	// Relations
	Client          Client           `gorm:"foreignKey:ClientID" json:"-"`
	Appointments    []Appointment    `gorm:"foreignKey:PetID" json:"-"`
	ClinicalRecords []ClinicalRecord `gorm:"foreignKey:PetID" json:"-"`
}

// PetSummary is the denormalized pet view embedded in appointment responses.
type PetSummary struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
}

// Summary returns the denormalized view of the pet.
func (p *Pet) Summary() PetSummary {
	return PetSummary{Name: p.Name, Species: p.Species, Breed: p.Breed}
}
