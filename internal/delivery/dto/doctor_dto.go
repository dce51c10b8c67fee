package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,min=2"`
	PhoneNumber    string `json:"phone_number" validate:"omitempty,min=9,max=20"`
	Specialization string `json:"specialization" validate:"required"`
	Qualification  string `json:"qualification" validate:"omitempty"`
	Biography      string `json:"biography" validate:"omitempty"`
	WorkingDays    []int  `json:"working_days" validate:"required,min=1,dive,min=0,max=6"` // 0 = Sunday
	ActiveFrom     string `json:"active_from" validate:"omitempty,datetime=2006-01-02"`
	ActiveTo       string `json:"active_to" validate:"omitempty,datetime=2006-01-02"`
	StartTime      string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime        string `json:"end_time" validate:"required,datetime=15:04"`
}

type UpdateDoctorRequest struct {
	FullName       string  `json:"full_name" validate:"omitempty,min=2"`
	PhoneNumber    string  `json:"phone_number" validate:"omitempty,min=9,max=20"`
	Specialization string  `json:"specialization" validate:"omitempty"`
	Qualification  string  `json:"qualification" validate:"omitempty"`
	Biography      string  `json:"biography" validate:"omitempty"`
	WorkingDays    []int   `json:"working_days" validate:"omitempty,min=1,dive,min=0,max=6"`
	ActiveFrom     *string `json:"active_from" validate:"omitempty"`
	ActiveTo       *string `json:"active_to" validate:"omitempty"`
	StartTime      string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime        string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	IsActive       *bool   `json:"is_active" validate:"omitempty"`
}

// Response DTOs

type DoctorProfileResponse struct {
	Specialization string `json:"specialization"`
	Qualification  string `json:"qualification,omitempty"`
	Biography      string `json:"biography,omitempty"`
	WorkingDays    []int  `json:"working_days"`
	ActiveFrom     string `json:"active_from,omitempty"`
	ActiveTo       string `json:"active_to,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
}

type DoctorResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IsActive    bool      `json:"is_active"`
	DoctorProfileResponse
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
