package repository

import (
	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArvRegimenRepository interface {
	Create(db *gorm.DB, regimen *entity.ArvRegimen) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.ArvRegimen, error)
	FindAll(db *gorm.DB, templatesOnly bool) ([]entity.ArvRegimen, error)
}
