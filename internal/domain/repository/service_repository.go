package repository

import (
	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	Create(db *gorm.DB, service *entity.Service) error
	Update(db *gorm.DB, service *entity.Service) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error)
	FindAll(db *gorm.DB, activeOnly bool) ([]entity.Service, error)
	FindByCategory(db *gorm.DB, categoryID uuid.UUID) ([]entity.Service, error)
}

type ServiceCategoryRepository interface {
	Create(db *gorm.DB, category *entity.ServiceCategory) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.ServiceCategory, error)
	FindAll(db *gorm.DB) ([]entity.ServiceCategory, error)
}
