package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OnlineConsultationServiceName is the legacy name that identified the online
// consultation service before the IsOnlineConsultation flag existed.
const OnlineConsultationServiceName = "Tư vấn trực tuyến"

// Service is a bookable clinic service.
type Service struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CategoryID           *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	Description          string          `gorm:"type:text" json:"description,omitempty"`
	Price                decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Duration             int             `gorm:"not null;default:30" json:"duration"`
	IsLabTest            bool            `gorm:"not null;default:false" json:"is_lab_test"`
	IsArvTest            bool            `gorm:"not null;default:false" json:"is_arv_test"`
	IsOnlineConsultation bool            `gorm:"not null;default:false" json:"is_online_consultation"`
	IsActive             bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// IsOnlineConsult reports whether the service is the online consultation
// type. Rows created before the flag existed are recognised by name.
func (s *Service) IsOnlineConsult() bool {
	if s == nil {
		return false
	}
	return s.IsOnlineConsultation || strings.EqualFold(strings.TrimSpace(s.Name), OnlineConsultationServiceName)
}

// RequiresArvFollowUp reports whether results for this service take the ARV
// branch (regimen, medication schedule, re-examination date).
func (s *Service) RequiresArvFollowUp() bool {
	return s != nil && s.IsArvTest && !s.IsLabTest
}

// EffectiveDuration returns the configured duration or the default.
func (s *Service) EffectiveDuration() int {
	if s == nil || s.Duration <= 0 {
		return DefaultBookingDuration
	}
	return s.Duration
}
