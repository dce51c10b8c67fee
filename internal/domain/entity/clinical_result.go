package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalResult is the record produced after an examination. At most one
// result exists per booking.
type ClinicalResult struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingID         uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	UserID            *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CreatedBy         uuid.UUID     `gorm:"type:uuid;not null" json:"created_by"`
	RegimenID         *uuid.UUID    `gorm:"type:uuid;index" json:"regimen_id,omitempty"`
	Weight            *float64      `json:"weight,omitempty"`
	Height            *float64      `json:"height,omitempty"`
	BloodPressure     string        `gorm:"type:varchar(20)" json:"blood_pressure,omitempty"`
	HeartRate         *int          `json:"heart_rate,omitempty"`
	Temperature       *float64      `json:"temperature,omitempty"`
	LabValues         JSON          `gorm:"type:jsonb" json:"lab_values,omitempty"`
	Symptoms          string        `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis         string        `gorm:"type:text" json:"diagnosis,omitempty"`
	Notes             string        `gorm:"type:text" json:"notes,omitempty"`
	MedicationTime    string        `gorm:"type:varchar(50)" json:"medication_time,omitempty"`
	MedicationTimes   StringMap     `gorm:"type:jsonb" json:"medication_times,omitempty"`
	ReExaminationDate *time.Time    `gorm:"type:date" json:"re_examination_date,omitempty"`
	OutcomeStatus     BookingStatus `gorm:"type:varchar(20);not null" json:"outcome_status"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Booking *Booking    `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Regimen *ArvRegimen `gorm:"foreignKey:RegimenID" json:"regimen,omitempty"`
}

func (ClinicalResult) TableName() string {
	return "clinical_results"
}
