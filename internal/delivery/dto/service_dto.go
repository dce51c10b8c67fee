package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateServiceRequest struct {
	CategoryID           *uuid.UUID      `json:"category_id" validate:"omitempty"`
	Name                 string          `json:"name" validate:"required,min=2,max=255"`
	Description          string          `json:"description" validate:"omitempty"`
	Price                decimal.Decimal `json:"price"`
	Duration             int             `json:"duration" validate:"omitempty,min=5,max=480"`
	IsLabTest            bool            `json:"is_lab_test"`
	IsArvTest            bool            `json:"is_arv_test"`
	IsOnlineConsultation bool            `json:"is_online_consultation"`
}

type UpdateServiceRequest struct {
	CategoryID           *uuid.UUID       `json:"category_id" validate:"omitempty"`
	Name                 string           `json:"name" validate:"omitempty,min=2,max=255"`
	Description          *string          `json:"description" validate:"omitempty"`
	Price                *decimal.Decimal `json:"price"`
	Duration             *int             `json:"duration" validate:"omitempty,min=5,max=480"`
	IsLabTest            *bool            `json:"is_lab_test"`
	IsArvTest            *bool            `json:"is_arv_test"`
	IsOnlineConsultation *bool            `json:"is_online_consultation"`
	IsActive             *bool            `json:"is_active"`
}

type CreateServiceCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty"`
}

// Response DTOs

type ServiceCategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

type ServiceResponse struct {
	ID                   uuid.UUID                `json:"id"`
	Name                 string                   `json:"name"`
	Description          string                   `json:"description,omitempty"`
	Price                decimal.Decimal          `json:"price"`
	Duration             int                      `json:"duration"`
	IsLabTest            bool                     `json:"is_lab_test"`
	IsArvTest            bool                     `json:"is_arv_test"`
	IsOnlineConsultation bool                     `json:"is_online_consultation"`
	IsActive             bool                     `json:"is_active"`
	Category             *ServiceCategoryResponse `json:"category,omitempty"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int               `json:"total"`
}

type ServiceCategoryListResponse struct {
	Categories []ServiceCategoryResponse `json:"categories"`
	Total      int                       `json:"total"`
}
