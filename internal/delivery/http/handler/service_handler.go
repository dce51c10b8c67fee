package handler

import (
	"encoding/json"
	"net/http"

	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/response"
	"hivcare-booking/pkg/validator"
)

type ServiceHandler struct {
	catalogUsecase usecase.ServiceCatalogUsecase
	validator      *validator.CustomValidator
}

func NewServiceHandler(catalogUsecase usecase.ServiceCatalogUsecase, validator *validator.CustomValidator) *ServiceHandler {
	return &ServiceHandler{
		catalogUsecase: catalogUsecase,
		validator:      validator,
	}
}

// ListServices returns active services; admins may pass ?all=true.
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalogUsecase.ListServices(r.Context(), !queryBool(r, "all"))
	if err != nil {
		response.InternalServerError(w, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	svc, err := h.catalogUsecase.GetService(r.Context(), serviceID)
	if err != nil {
		writeError(w, err, "Failed to get service")
		return
	}

	response.Success(w, http.StatusOK, "Service retrieved successfully", svc)
}

func (h *ServiceHandler) ListServicesByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	services, err := h.catalogUsecase.ListServicesByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, err, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.catalogUsecase.CreateService(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create service")
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", svc)
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	var req dto.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.catalogUsecase.UpdateService(r.Context(), serviceID, &req)
	if err != nil {
		writeError(w, err, "Failed to update service")
		return
	}

	response.Success(w, http.StatusOK, "Service updated successfully", svc)
}

func (h *ServiceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get categories")
		return
	}

	response.Success(w, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *ServiceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	category, err := h.catalogUsecase.CreateCategory(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create category")
		return
	}

	response.Success(w, http.StatusCreated, "Category created successfully", category)
}
