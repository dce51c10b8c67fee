package entity

import (
	"time"

	"github.com/google/uuid"
)

// ArvRegimen is a named antiretroviral drug protocol. Templates have no
// BaseRegimenID; per-patient customisations point back at their template.
type ArvRegimen struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	Description       string     `gorm:"type:text" json:"description,omitempty"`
	Drugs             StringList `gorm:"type:jsonb;not null" json:"drugs"`
	Dosages           StringList `gorm:"type:jsonb;not null" json:"dosages"`
	Frequency         StringList `gorm:"type:jsonb;not null" json:"frequency"`
	Contraindications StringList `gorm:"type:jsonb" json:"contraindications"`
	SideEffects       StringList `gorm:"type:jsonb" json:"side_effects"`
	TreatmentLine     string     `gorm:"type:varchar(50)" json:"treatment_line,omitempty"`
	BaseRegimenID     *uuid.UUID `gorm:"type:uuid;index" json:"base_regimen_id,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ArvRegimen) TableName() string {
	return "arv_regimens"
}

// IsTemplate reports whether the regimen is a shared template.
func (r *ArvRegimen) IsTemplate() bool {
	return r.BaseRegimenID == nil
}
