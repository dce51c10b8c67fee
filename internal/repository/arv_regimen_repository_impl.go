package repository

import (
	"errors"

	"hivcare-booking/internal/domain/entity"
	domainRepo "hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type arvRegimenRepository struct{}

func NewArvRegimenRepository() domainRepo.ArvRegimenRepository {
	return &arvRegimenRepository{}
}

func (r *arvRegimenRepository) Create(db *gorm.DB, regimen *entity.ArvRegimen) error {
	return db.Create(regimen).Error
}

func (r *arvRegimenRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ArvRegimen, error) {
	var regimen entity.ArvRegimen
	err := db.Where("id = ?", id).First(&regimen).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &regimen, nil
}

func (r *arvRegimenRepository) FindAll(db *gorm.DB, templatesOnly bool) ([]entity.ArvRegimen, error) {
	query := db
	if templatesOnly {
		query = query.Where("base_regimen_id IS NULL")
	}

	var regimens []entity.ArvRegimen
	if err := query.Order("name ASC").Find(&regimens).Error; err != nil {
		return nil, err
	}
	return regimens, nil
}
