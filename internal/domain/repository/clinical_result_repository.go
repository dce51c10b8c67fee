package repository

import (
	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClinicalResultRepository interface {
	Create(db *gorm.DB, result *entity.ClinicalResult) error
	FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.ClinicalResult, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.ClinicalResult, error)
	ExistsForBooking(db *gorm.DB, bookingID uuid.UUID) (bool, error)
}
