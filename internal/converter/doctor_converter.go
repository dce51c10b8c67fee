package converter

import (
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
)

func doctorProfileFields(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	days := make([]int, len(profile.WorkingDays))
	for i, d := range profile.WorkingDays {
		days[i] = int(d)
	}

	resp := &dto.DoctorProfileResponse{
		Specialization: profile.Specialization,
		Qualification:  profile.Qualification,
		Biography:      profile.Biography,
		WorkingDays:    days,
		StartTime:      profile.StartTime,
		EndTime:        profile.EndTime,
	}
	if !profile.ActiveFrom.IsZero() {
		resp.ActiveFrom = profile.ActiveFrom.Format(entity.DateLayout)
	}
	if !profile.ActiveTo.IsZero() {
		resp.ActiveTo = profile.ActiveTo.Format(entity.DateLayout)
	}
	return resp
}

// DoctorProfileToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                    profile.UserID,
		Email:                 profile.User.Email,
		FullName:              profile.User.FullName,
		PhoneNumber:           profile.User.PhoneNumber,
		IsActive:              profile.User.IsActive,
		DoctorProfileResponse: *doctorProfileFields(profile),
	}
}

// DoctorProfilesToResponses converts a slice of DoctorProfile entities to slice of DoctorResponse DTOs
func DoctorProfilesToResponses(profiles []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorProfileToResponse(&profiles[i])
	}
	return responses
}
