package converter

import (
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
)

// ResultToResponse converts a ClinicalResult entity to ResultResponse DTO
func ResultToResponse(result *entity.ClinicalResult) *dto.ResultResponse {
	if result == nil {
		return nil
	}

	response := &dto.ResultResponse{
		ID:              result.ID,
		BookingID:       result.BookingID,
		UserID:          result.UserID,
		CreatedBy:       result.CreatedBy,
		Status:          string(result.OutcomeStatus),
		MedicationTime:  result.MedicationTime,
		MedicationTimes: result.MedicationTimes,
		Weight:          result.Weight,
		Height:          result.Height,
		BloodPressure:   result.BloodPressure,
		HeartRate:       result.HeartRate,
		Temperature:     result.Temperature,
		LabValues:       result.LabValues,
		Symptoms:        result.Symptoms,
		Diagnosis:       result.Diagnosis,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
	}

	if result.ReExaminationDate != nil {
		response.ReExaminationDate = result.ReExaminationDate.Format(entity.DateLayout)
	}
	if result.Regimen != nil {
		response.Regimen = RegimenToResponse(result.Regimen)
		response.RegimenCloned = !result.Regimen.IsTemplate()
	}

	return response
}

func ResultsToResponses(results []entity.ClinicalResult) []dto.ResultResponse {
	responses := make([]dto.ResultResponse, len(results))
	for i := range results {
		responses[i] = *ResultToResponse(&results[i])
	}
	return responses
}
