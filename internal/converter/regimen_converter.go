package converter

import (
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
)

func nonNil(list entity.StringList) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func RegimenToResponse(regimen *entity.ArvRegimen) *dto.RegimenResponse {
	if regimen == nil {
		return nil
	}

	return &dto.RegimenResponse{
		ID:                regimen.ID,
		Name:              regimen.Name,
		Description:       regimen.Description,
		Drugs:             nonNil(regimen.Drugs),
		Dosages:           nonNil(regimen.Dosages),
		Frequency:         nonNil(regimen.Frequency),
		Contraindications: nonNil(regimen.Contraindications),
		SideEffects:       nonNil(regimen.SideEffects),
		TreatmentLine:     regimen.TreatmentLine,
		BaseRegimenID:     regimen.BaseRegimenID,
		CreatedAt:         regimen.CreatedAt,
	}
}

func RegimensToResponses(regimens []entity.ArvRegimen) []dto.RegimenResponse {
	responses := make([]dto.RegimenResponse, len(regimens))
	for i := range regimens {
		responses[i] = *RegimenToResponse(&regimens[i])
	}
	return responses
}
