package converter

import (
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/privacy"
	"hivcare-booking/internal/domain/workflow"

	"github.com/google/uuid"
)

// BookingService returns the preloaded service, nil when it was not loaded.
func BookingService(booking *entity.Booking) *entity.Service {
	if booking == nil || booking.Service.ID == uuid.Nil {
		return nil
	}
	return &booking.Service
}

// BookingToResponse converts a Booking entity to BookingResponse DTO as seen
// by viewer. Contact fields of anonymous bookings are masked here unless the
// viewer may reveal them.
func BookingToResponse(booking *entity.Booking, viewer privacy.Viewer) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	contact, masked := privacy.Apply(booking, privacy.Contact{
		Name:  booking.CustomerName,
		Phone: booking.CustomerPhone,
		Email: booking.CustomerEmail,
	}, viewer)
	svc := BookingService(booking)

	response := &dto.BookingResponse{
		ID:                 booking.ID,
		BookingCode:        booking.BookingCode,
		BookingDate:        booking.DateString(),
		StartTime:          booking.StartTime,
		EndTime:            booking.EndTime,
		Duration:           booking.Duration,
		DoctorID:           booking.DoctorID,
		DoctorName:         booking.DoctorName,
		CustomerName:       contact.Name,
		CustomerPhone:      contact.Phone,
		CustomerEmail:      contact.Email,
		IsAnonymous:        booking.IsAnonymous,
		Masked:             masked,
		Status:             string(booking.Status),
		PaymentStatus:      string(workflow.PaymentStatusOf(booking.Status)),
		PaymentNeedsReview: workflow.CancelledCountsAsPaid(booking.Status),
		CanCreateRecord:    workflow.CanCreateRecord(booking.Status, viewer.Role, svc),
		Actions:            workflow.AvailableActions(booking, svc, viewer.Role, viewer.UserID),
		MeetLink:           booking.MeetLink,
		Notes:              booking.Notes,
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}

	// The account link identifies an anonymous patient as much as the name does.
	if !masked {
		response.UserID = booking.UserID
	}

	if svc != nil {
		response.Service = &dto.ServiceSummary{
			ID:                   svc.ID,
			Name:                 svc.Name,
			Price:                svc.Price,
			IsLabTest:            svc.IsLabTest,
			IsArvTest:            svc.IsArvTest,
			IsOnlineConsultation: svc.IsOnlineConsult(),
		}
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking, viewer privacy.Viewer) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i], viewer)
	}
	return responses
}
