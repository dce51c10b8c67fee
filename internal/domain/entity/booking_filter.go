package entity

import "github.com/google/uuid"

// BookingFilter is a domain-level filter for querying bookings.
// Used by repository layer to avoid coupling with delivery DTOs.
type BookingFilter struct {
	UserID     *uuid.UUID
	DoctorID   *uuid.UUID
	DoctorName string          // exact doctor name
	Date       string          // Format: YYYY-MM-DD
	Statuses   []BookingStatus // any of
}
