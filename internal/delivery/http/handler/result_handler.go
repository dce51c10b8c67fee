package handler

import (
	"encoding/json"
	"net/http"

	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/response"
	"hivcare-booking/pkg/validator"
)

type ResultHandler struct {
	resultUsecase usecase.ResultUsecase
	validator     *validator.CustomValidator
}

func NewResultHandler(resultUsecase usecase.ResultUsecase, validator *validator.CustomValidator) *ResultHandler {
	return &ResultHandler{
		resultUsecase: resultUsecase,
		validator:     validator,
	}
}

func (h *ResultHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.resultUsecase.SubmitResult(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to submit result")
		return
	}

	response.Success(w, http.StatusCreated, "Result submitted successfully", result)
}

func (h *ResultHandler) GetResultByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	result, err := h.resultUsecase.GetResultByBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err, "Failed to get result")
		return
	}

	response.Success(w, http.StatusOK, "Result retrieved successfully", result)
}

func (h *ResultHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	eligibility, err := h.resultUsecase.CheckEligibility(r.Context(), bookingID)
	if err != nil {
		writeError(w, err, "Failed to check eligibility")
		return
	}

	response.Success(w, http.StatusOK, "Eligibility retrieved successfully", eligibility)
}

func (h *ResultHandler) GetMyResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultUsecase.ListMyResults(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get results")
		return
	}

	response.Success(w, http.StatusOK, "Results retrieved successfully", results)
}

func (h *ResultHandler) GetUserResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	results, err := h.resultUsecase.ListResultsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Failed to get results")
		return
	}

	response.Success(w, http.StatusOK, "Results retrieved successfully", results)
}
