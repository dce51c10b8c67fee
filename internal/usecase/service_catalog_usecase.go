package usecase

import (
	"context"
	"strings"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ServiceCatalogUsecase interface {
	CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	UpdateService(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	ListServices(ctx context.Context, activeOnly bool) (*dto.ServiceListResponse, error)
	ListServicesByCategory(ctx context.Context, categoryID uuid.UUID) (*dto.ServiceListResponse, error)
	CreateCategory(ctx context.Context, req *dto.CreateServiceCategoryRequest) (*dto.ServiceCategoryResponse, error)
	ListCategories(ctx context.Context) (*dto.ServiceCategoryListResponse, error)
}

type serviceCatalogUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	categoryRepo repository.ServiceCategoryRepository
	auditService service.AuditService
}

func NewServiceCatalogUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	categoryRepo repository.ServiceCategoryRepository,
	auditService service.AuditService,
) ServiceCatalogUsecase {
	return &serviceCatalogUsecase{
		tx:           tx,
		log:          log,
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
		auditService: auditService,
	}
}

func (u *serviceCatalogUsecase) ensureCategory(db *gorm.DB, id *uuid.UUID) (*entity.ServiceCategory, error) {
	if id == nil {
		return nil, nil
	}
	category, err := u.categoryRepo.FindByID(db, *id)
	if err != nil {
		u.log.Warnf("Failed to find service category: %+v", err)
		return nil, err
	}
	if category == nil {
		return nil, apperror.NotFound("service category %s not found", *id)
	}
	return category, nil
}

func (u *serviceCatalogUsecase) CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Price.IsNegative() {
		return nil, apperror.ValidationField("price", "price must not be negative")
	}

	svc := &entity.Service{
		CategoryID:           req.CategoryID,
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		Price:                req.Price,
		Duration:             req.Duration,
		IsLabTest:            req.IsLabTest,
		IsArvTest:            req.IsArvTest,
		IsOnlineConsultation: req.IsOnlineConsultation,
		IsActive:             true,
	}
	if svc.Duration <= 0 {
		svc.Duration = entity.DefaultBookingDuration
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		category, err := u.ensureCategory(tx, req.CategoryID)
		if err != nil {
			return err
		}

		if err := u.serviceRepo.Create(tx, svc); err != nil {
			u.log.Warnf("Failed to create service: %+v", err)
			return err
		}
		svc.Category = category

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionServiceCreate,
			Entity:   "service",
			EntityID: svc.ID.String(),
			NewValue: converter.ServiceToResponse(svc),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceCatalogUsecase) UpdateService(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperror.ValidationField("price", "price must not be negative")
	}

	var updated *entity.Service
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		svc, err := u.serviceRepo.FindByID(tx, id)
		if err != nil {
			u.log.Warnf("Failed to find service: %+v", err)
			return err
		}
		if svc == nil {
			return apperror.NotFound("service %s not found", id)
		}
		oldValue := converter.ServiceToResponse(svc)

		if req.CategoryID != nil {
			category, err := u.ensureCategory(tx, req.CategoryID)
			if err != nil {
				return err
			}
			svc.CategoryID = req.CategoryID
			svc.Category = category
		}
		if req.Name != "" {
			svc.Name = strings.TrimSpace(req.Name)
		}
		if req.Description != nil {
			svc.Description = *req.Description
		}
		if req.Price != nil {
			svc.Price = *req.Price
		}
		if req.Duration != nil {
			svc.Duration = *req.Duration
		}
		if req.IsLabTest != nil {
			svc.IsLabTest = *req.IsLabTest
		}
		if req.IsArvTest != nil {
			svc.IsArvTest = *req.IsArvTest
		}
		if req.IsOnlineConsultation != nil {
			svc.IsOnlineConsultation = *req.IsOnlineConsultation
		}
		if req.IsActive != nil {
			svc.IsActive = *req.IsActive
		}

		if err := u.serviceRepo.Update(tx, svc); err != nil {
			u.log.Warnf("Failed to update service: %+v", err)
			return err
		}

		updated = svc
		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionServiceUpdate,
			Entity:   "service",
			EntityID: id.String(),
			OldValue: oldValue,
			NewValue: converter.ServiceToResponse(svc),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(updated), nil
}

func (u *serviceCatalogUsecase) GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NotFound("service %s not found", id)
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *serviceCatalogUsecase) ListServices(ctx context.Context, activeOnly bool) (*dto.ServiceListResponse, error) {
	services, err := u.serviceRepo.FindAll(u.tx.DB(ctx), activeOnly)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, err
	}
	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    len(services),
	}, nil
}

func (u *serviceCatalogUsecase) ListServicesByCategory(ctx context.Context, categoryID uuid.UUID) (*dto.ServiceListResponse, error) {
	db := u.tx.DB(ctx)
	if _, err := u.ensureCategory(db, &categoryID); err != nil {
		return nil, err
	}

	services, err := u.serviceRepo.FindByCategory(db, categoryID)
	if err != nil {
		u.log.Warnf("Failed to find services by category: %+v", err)
		return nil, err
	}
	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    len(services),
	}, nil
}

func (u *serviceCatalogUsecase) CreateCategory(ctx context.Context, req *dto.CreateServiceCategoryRequest) (*dto.ServiceCategoryResponse, error) {
	category := &entity.ServiceCategory{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.categoryRepo.Create(tx, category); err != nil {
			if isDuplicateKeyError(err, "name") {
				return apperror.Conflict("service category %q already exists", category.Name)
			}
			u.log.Warnf("Failed to create service category: %+v", err)
			return err
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionServiceCategoryEdit,
			Entity:   "service_category",
			EntityID: category.ID.String(),
			NewValue: converter.ServiceCategoryToResponse(category),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceCategoryToResponse(category), nil
}

func (u *serviceCatalogUsecase) ListCategories(ctx context.Context) (*dto.ServiceCategoryListResponse, error) {
	categories, err := u.categoryRepo.FindAll(u.tx.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to find service categories: %+v", err)
		return nil, err
	}
	return &dto.ServiceCategoryListResponse{
		Categories: converter.ServiceCategoriesToResponses(categories),
		Total:      len(categories),
	}, nil
}
