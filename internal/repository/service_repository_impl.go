package repository

import (
	"errors"

	"hivcare-booking/internal/domain/entity"
	domainRepo "hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type serviceRepository struct{}

func NewServiceRepository() domainRepo.ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) Create(db *gorm.DB, service *entity.Service) error {
	return db.Create(service).Error
}

func (r *serviceRepository) Update(db *gorm.DB, service *entity.Service) error {
	return db.Save(service).Error
}

func (r *serviceRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := db.Preload("Category").Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) FindAll(db *gorm.DB, activeOnly bool) ([]entity.Service, error) {
	query := db.Preload("Category")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var services []entity.Service
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) FindByCategory(db *gorm.DB, categoryID uuid.UUID) ([]entity.Service, error) {
	var services []entity.Service
	err := db.Preload("Category").
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

type serviceCategoryRepository struct{}

func NewServiceCategoryRepository() domainRepo.ServiceCategoryRepository {
	return &serviceCategoryRepository{}
}

func (r *serviceCategoryRepository) Create(db *gorm.DB, category *entity.ServiceCategory) error {
	return db.Create(category).Error
}

func (r *serviceCategoryRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ServiceCategory, error) {
	var category entity.ServiceCategory
	err := db.Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *serviceCategoryRepository) FindAll(db *gorm.DB) ([]entity.ServiceCategory, error) {
	var categories []entity.ServiceCategory
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
