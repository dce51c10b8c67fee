package dto

import (
	"hivcare-booking/internal/domain/schedule"

	"github.com/google/uuid"
)

type AvailableDoctorsResponse struct {
	Date    string           `json:"date"`
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type SlotListResponse struct {
	DoctorID   uuid.UUID       `json:"doctor_id"`
	DoctorName string          `json:"doctor_name"`
	Date       string          `json:"date"`
	Interval   int             `json:"interval"`
	Slots      []schedule.Slot `json:"slots"`
}
