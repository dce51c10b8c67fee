package handler

import (
	"encoding/json"
	"net/http"

	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/response"
	"hivcare-booking/pkg/validator"
)

type RegimenHandler struct {
	regimenUsecase usecase.RegimenUsecase
	validator      *validator.CustomValidator
}

func NewRegimenHandler(regimenUsecase usecase.RegimenUsecase, validator *validator.CustomValidator) *RegimenHandler {
	return &RegimenHandler{
		regimenUsecase: regimenUsecase,
		validator:      validator,
	}
}

// ListRegimens returns templates only unless ?all=true.
func (h *RegimenHandler) ListRegimens(w http.ResponseWriter, r *http.Request) {
	regimens, err := h.regimenUsecase.ListRegimens(r.Context(), !queryBool(r, "all"))
	if err != nil {
		response.InternalServerError(w, "Failed to get regimens")
		return
	}

	response.Success(w, http.StatusOK, "Regimens retrieved successfully", regimens)
}

func (h *RegimenHandler) GetRegimen(w http.ResponseWriter, r *http.Request) {
	regimenID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid regimen ID", nil)
		return
	}

	regimen, err := h.regimenUsecase.GetRegimen(r.Context(), regimenID)
	if err != nil {
		writeError(w, err, "Failed to get regimen")
		return
	}

	response.Success(w, http.StatusOK, "Regimen retrieved successfully", regimen)
}

func (h *RegimenHandler) CreateRegimen(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRegimenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	regimen, err := h.regimenUsecase.CreateRegimen(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create regimen")
		return
	}

	response.Success(w, http.StatusCreated, "Regimen created successfully", regimen)
}
