package repository

import (
	"time"

	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindAll(db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error)
	FindByDoctorName(db *gorm.DB, doctorName string) ([]entity.Booking, error)
	FindActiveByDoctorDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Booking, error)
	FindActiveSince(db *gorm.DB, from time.Time) ([]entity.Booking, error)
	// UpdateStatus moves a booking from one status to another only if it
	// still holds from. Returns affected rows: 0 means the status changed
	// underneath the caller.
	UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error)
	UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error)
	// DeleteIfStatus hard-deletes the booking only while it holds status.
	DeleteIfStatus(db *gorm.DB, id uuid.UUID, status entity.BookingStatus) (int64, error)
}
