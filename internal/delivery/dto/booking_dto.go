package dto

import (
	"time"

	"hivcare-booking/internal/domain/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	DoctorID      uuid.UUID `json:"doctor_id" validate:"required"`
	ServiceID     uuid.UUID `json:"service_id" validate:"required"`
	BookingDate   string    `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime     string    `json:"start_time" validate:"required,datetime=15:04"`
	Duration      int       `json:"duration" validate:"omitempty,min=5,max=480"`
	IsAnonymous   bool      `json:"is_anonymous"`
	CustomerName  string    `json:"customer_name" validate:"required_unless=IsAnonymous true,omitempty,min=2,max=255"`
	CustomerPhone string    `json:"customer_phone" validate:"required_unless=IsAnonymous true,omitempty,min=9,max=20"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	Notes         string    `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateMeetLinkRequest struct {
	MeetLink string `json:"meet_link" validate:"required,url"`
}

// BookingQuery carries the list filters and the reveal toggle.
type BookingQuery struct {
	Date       string
	Status     string
	DoctorName string
	Reveal     bool
}

// Response DTOs

type ServiceSummary struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Price                decimal.Decimal `json:"price"`
	IsLabTest            bool            `json:"is_lab_test"`
	IsArvTest            bool            `json:"is_arv_test"`
	IsOnlineConsultation bool            `json:"is_online_consultation"`
}

type BookingResponse struct {
	ID                 uuid.UUID         `json:"id"`
	BookingCode        string            `json:"booking_code"`
	BookingDate        string            `json:"booking_date"`
	StartTime          string            `json:"start_time"`
	EndTime            string            `json:"end_time"`
	Duration           int               `json:"duration"`
	DoctorID           uuid.UUID         `json:"doctor_id"`
	DoctorName         string            `json:"doctor_name"`
	UserID             *uuid.UUID        `json:"user_id,omitempty"`
	CustomerName       string            `json:"customer_name"`
	CustomerPhone      string            `json:"customer_phone"`
	CustomerEmail      string            `json:"customer_email,omitempty"`
	IsAnonymous        bool              `json:"is_anonymous"`
	Masked             bool              `json:"masked"`
	Service            *ServiceSummary   `json:"service,omitempty"`
	Status             string            `json:"status"`
	PaymentStatus      string            `json:"payment_status"`
	PaymentNeedsReview bool              `json:"payment_needs_review,omitempty"`
	CanCreateRecord    bool              `json:"can_create_record"`
	Actions            []workflow.Action `json:"actions"`
	MeetLink           string            `json:"meet_link,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
