package converter

import (
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
)

func ServiceCategoryToResponse(category *entity.ServiceCategory) *dto.ServiceCategoryResponse {
	if category == nil {
		return nil
	}
	return &dto.ServiceCategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}

func ServiceCategoriesToResponses(categories []entity.ServiceCategory) []dto.ServiceCategoryResponse {
	responses := make([]dto.ServiceCategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ServiceCategoryToResponse(&categories[i])
	}
	return responses
}

// ServiceToResponse converts a Service entity to ServiceResponse DTO
func ServiceToResponse(svc *entity.Service) *dto.ServiceResponse {
	if svc == nil {
		return nil
	}

	return &dto.ServiceResponse{
		ID:                   svc.ID,
		Name:                 svc.Name,
		Description:          svc.Description,
		Price:                svc.Price,
		Duration:             svc.EffectiveDuration(),
		IsLabTest:            svc.IsLabTest,
		IsArvTest:            svc.IsArvTest,
		IsOnlineConsultation: svc.IsOnlineConsult(),
		IsActive:             svc.IsActive,
		Category:             ServiceCategoryToResponse(svc.Category),
		CreatedAt:            svc.CreatedAt,
		UpdatedAt:            svc.UpdatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = *ServiceToResponse(&services[i])
	}
	return responses
}
