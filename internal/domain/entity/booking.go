package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending       BookingStatus = "pending"
	BookingStatusConfirmed     BookingStatus = "confirmed"
	BookingStatusCheckedIn     BookingStatus = "checked-in"
	BookingStatusCheckedOut    BookingStatus = "checked-out"
	BookingStatusCompleted     BookingStatus = "completed"
	BookingStatusReExamination BookingStatus = "re-examination"
	BookingStatusCancelled     BookingStatus = "cancelled"
)

// DefaultBookingDuration is used when neither the request nor the service
// carries a duration, in minutes.
const DefaultBookingDuration = 30

// BookingStatuses lists every known status.
var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
	BookingStatusCheckedOut,
	BookingStatusCompleted,
	BookingStatusReExamination,
	BookingStatusCancelled,
}

// IsValid reports whether s is one of the known statuses.
func (s BookingStatus) IsValid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Booking represents one scheduled appointment.
type Booking struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingCode   string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	BookingDate   time.Time     `gorm:"type:date;not null;index" json:"booking_date"`
	StartTime     string        `gorm:"type:varchar(5);not null" json:"start_time"`
	Duration      int           `gorm:"not null;default:30" json:"duration"`
	EndTime       string        `gorm:"type:varchar(5)" json:"end_time"`
	DoctorID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DoctorName    string        `gorm:"type:varchar(255);not null;index" json:"doctor_name"`
	UserID        *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CustomerName  string        `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string        `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerEmail string        `gorm:"type:varchar(255)" json:"customer_email"`
	ServiceID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"service_id"`
	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsAnonymous   bool          `gorm:"not null;default:false" json:"is_anonymous"`
	MeetLink      string        `gorm:"type:text" json:"meet_link,omitempty"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Service Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending checks if booking is in pending status
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsOwnedBy reports whether the booking belongs to the given patient account.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID != nil && *b.UserID == userID
}

// DateString returns the booking date as an ISO calendar string.
func (b *Booking) DateString() string {
	return b.BookingDate.Format(DateLayout)
}

// DateLayout is the ISO calendar date format used on the wire.
const DateLayout = "2006-01-02"
