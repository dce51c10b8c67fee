package handler

import (
	"net/http"

	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/response"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityUsecase: availabilityUsecase}
}

// GetAvailableDoctors lists doctors working on ?date=YYYY-MM-DD.
func (h *AvailabilityHandler) GetAvailableDoctors(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.Error(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	doctors, err := h.availabilityUsecase.GetAvailableDoctors(r.Context(), date)
	if err != nil {
		writeError(w, err, "Failed to get available doctors")
		return
	}

	response.Success(w, http.StatusOK, "Available doctors retrieved successfully", doctors)
}

func (h *AvailabilityHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.Error(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	slots, err := h.availabilityUsecase.GetDoctorSlots(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}
