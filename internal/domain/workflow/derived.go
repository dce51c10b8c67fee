package workflow

import "hivcare-booking/internal/domain/entity"

// PaymentStatus is derived from the booking status and never stored.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// PaymentStatusOf reports the payment state implied by status. Cancelled
// bookings keep the historical "paid" reading; see CancelledCountsAsPaid.
func PaymentStatusOf(status entity.BookingStatus) PaymentStatus {
	switch status {
	case entity.BookingStatusCheckedIn,
		entity.BookingStatusCheckedOut,
		entity.BookingStatusCompleted,
		entity.BookingStatusReExamination,
		entity.BookingStatusCancelled:
		return PaymentPaid
	}
	return PaymentUnpaid
}

// CancelledCountsAsPaid flags the cancelled-as-paid reading so callers can
// surface it for review instead of relying on it silently.
func CancelledCountsAsPaid(status entity.BookingStatus) bool {
	return status == entity.BookingStatusCancelled
}

// CanCreateRecord reports whether role may open the clinical record form for
// a booking. Only doctors and testers write records, never on a pending or
// cancelled booking, and online consultations are recorded by doctors only.
func CanCreateRecord(status entity.BookingStatus, role string, svc *entity.Service) bool {
	if role != entity.RoleDoctor && role != entity.RoleTester {
		return false
	}
	if status == entity.BookingStatusPending || status == entity.BookingStatusCancelled {
		return false
	}
	if svc.IsOnlineConsult() && role != entity.RoleDoctor {
		return false
	}
	return true
}
