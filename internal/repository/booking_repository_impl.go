package repository

import (
	"errors"
	"time"

	"hivcare-booking/internal/domain/entity"
	domainRepo "hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Preload("Service").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(db *gorm.DB, filter entity.BookingFilter) ([]entity.Booking, error) {
	query := db.Preload("Service")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.DoctorName != "" {
		query = query.Where("doctor_name = ?", filter.DoctorName)
	}
	if filter.Date != "" {
		query = query.Where("booking_date = ?", filter.Date)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var bookings []entity.Booking
	err := query.Order("booking_date DESC, start_time ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	return r.FindAll(db, entity.BookingFilter{UserID: &userID})
}

func (r *bookingRepository) FindByDoctorName(db *gorm.DB, doctorName string) ([]entity.Booking, error) {
	return r.FindAll(db, entity.BookingFilter{DoctorName: doctorName})
}

func (r *bookingRepository) FindActiveByDoctorDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Where("doctor_id = ? AND booking_date = ? AND status != ?", doctorID, date.Format(entity.DateLayout), entity.BookingStatusCancelled).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindActiveSince(db *gorm.DB, from time.Time) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := db.Select("id", "doctor_id", "booking_date", "start_time", "status").
		Where("booking_date >= ? AND status != ?", from.Format(entity.DateLayout), entity.BookingStatusCancelled).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus applies the transition only while the row still holds from.
// Returns affected rows: 1 = applied, 0 = status changed concurrently.
func (r *bookingRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Booking{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) DeleteIfStatus(db *gorm.DB, id uuid.UUID, status entity.BookingStatus) (int64, error) {
	result := db.Where("id = ? AND status = ?", id, status).Delete(&entity.Booking{})
	return result.RowsAffected, result.Error
}
