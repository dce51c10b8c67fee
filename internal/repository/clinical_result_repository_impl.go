package repository

import (
	"errors"

	"hivcare-booking/internal/domain/entity"
	domainRepo "hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clinicalResultRepository struct{}

func NewClinicalResultRepository() domainRepo.ClinicalResultRepository {
	return &clinicalResultRepository{}
}

func (r *clinicalResultRepository) Create(db *gorm.DB, result *entity.ClinicalResult) error {
	return db.Omit("Booking", "Regimen").Create(result).Error
}

func (r *clinicalResultRepository) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.ClinicalResult, error) {
	var result entity.ClinicalResult
	err := db.Preload("Regimen").Where("booking_id = ?", bookingID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *clinicalResultRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.ClinicalResult, error) {
	var results []entity.ClinicalResult
	err := db.Preload("Regimen").Preload("Booking").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *clinicalResultRepository) ExistsForBooking(db *gorm.DB, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&entity.ClinicalResult{}).Where("booking_id = ?", bookingID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
