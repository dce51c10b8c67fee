package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateRegimenRequest struct {
	Name              string   `json:"name" validate:"required,min=2,max=255"`
	Description       string   `json:"description" validate:"omitempty"`
	Drugs             []string `json:"drugs" validate:"required,min=1,dive,required"`
	Dosages           []string `json:"dosages" validate:"required,min=1,dive,required"`
	Frequency         []string `json:"frequency" validate:"required,min=1,dive,required"`
	Contraindications []string `json:"contraindications" validate:"omitempty,dive,required"`
	SideEffects       []string `json:"side_effects" validate:"omitempty,dive,required"`
	TreatmentLine     string   `json:"treatment_line" validate:"omitempty,max=50"`
}

// Response DTOs

type RegimenResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Drugs             []string   `json:"drugs"`
	Dosages           []string   `json:"dosages"`
	Frequency         []string   `json:"frequency"`
	Contraindications []string   `json:"contraindications"`
	SideEffects       []string   `json:"side_effects"`
	TreatmentLine     string     `json:"treatment_line,omitempty"`
	BaseRegimenID     *uuid.UUID `json:"base_regimen_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type RegimenListResponse struct {
	Regimens []RegimenResponse `json:"regimens"`
	Total    int               `json:"total"`
}
