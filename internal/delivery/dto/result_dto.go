package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegimenEditRequest struct {
	Dosages           []string `json:"dosages"`
	Frequency         []string `json:"frequency"`
	Contraindications []string `json:"contraindications"`
	SideEffects       []string `json:"side_effects"`
}

// SubmitResultRequest is a clinical result for a checked-in booking. Status
// is checked by the result rule rather than the validator so a missing
// status is reported as such.
type SubmitResultRequest struct {
	BookingID         uuid.UUID              `json:"booking_id" validate:"required"`
	Status            string                 `json:"status"`
	RegimenID         *uuid.UUID             `json:"regimen_id"`
	Regimen           *RegimenEditRequest    `json:"regimen"`
	MedicationTime    string                 `json:"medication_time"`
	MedicationTimes   map[string]string      `json:"medication_times"`
	ReExaminationDate string                 `json:"re_examination_date" validate:"omitempty,datetime=2006-01-02"`
	Weight            *float64               `json:"weight" validate:"omitempty,gt=0,lt=500"`
	Height            *float64               `json:"height" validate:"omitempty,gt=0,lt=300"`
	BloodPressure     string                 `json:"blood_pressure" validate:"omitempty,max=20"`
	HeartRate         *int                   `json:"heart_rate" validate:"omitempty,gt=0,lt=300"`
	Temperature       *float64               `json:"temperature" validate:"omitempty,gt=25,lt=45"`
	LabValues         map[string]interface{} `json:"lab_values"`
	Symptoms          string                 `json:"symptoms"`
	Diagnosis         string                 `json:"diagnosis"`
	Notes             string                 `json:"notes"`
}

// Response DTOs

type ResultResponse struct {
	ID                uuid.UUID              `json:"id"`
	BookingID         uuid.UUID              `json:"booking_id"`
	UserID            *uuid.UUID             `json:"user_id,omitempty"`
	CreatedBy         uuid.UUID              `json:"created_by"`
	Status            string                 `json:"status"`
	Regimen           *RegimenResponse       `json:"regimen,omitempty"`
	RegimenCloned     bool                   `json:"regimen_cloned"`
	MedicationTime    string                 `json:"medication_time,omitempty"`
	MedicationTimes   map[string]string      `json:"medication_times,omitempty"`
	ReExaminationDate string                 `json:"re_examination_date,omitempty"`
	Weight            *float64               `json:"weight,omitempty"`
	Height            *float64               `json:"height,omitempty"`
	BloodPressure     string                 `json:"blood_pressure,omitempty"`
	HeartRate         *int                   `json:"heart_rate,omitempty"`
	Temperature       *float64               `json:"temperature,omitempty"`
	LabValues         map[string]interface{} `json:"lab_values,omitempty"`
	Symptoms          string                 `json:"symptoms,omitempty"`
	Diagnosis         string                 `json:"diagnosis,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

type ResultListResponse struct {
	Results []ResultResponse `json:"results"`
	Total   int              `json:"total"`
}

type RecordEligibilityResponse struct {
	BookingID      uuid.UUID `json:"booking_id"`
	CanCreate      bool      `json:"can_create"`
	HasResult      bool      `json:"has_result"`
	TargetStatuses []string  `json:"target_statuses"`
	RequiresArv    bool      `json:"requires_arv"`
	MedicationSlot []string  `json:"medication_slots,omitempty"`
}
