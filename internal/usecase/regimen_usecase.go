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

type RegimenUsecase interface {
	CreateRegimen(ctx context.Context, req *dto.CreateRegimenRequest) (*dto.RegimenResponse, error)
	GetRegimen(ctx context.Context, id uuid.UUID) (*dto.RegimenResponse, error)
	ListRegimens(ctx context.Context, templatesOnly bool) (*dto.RegimenListResponse, error)
}

type regimenUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	regimenRepo  repository.ArvRegimenRepository
	auditService service.AuditService
}

func NewRegimenUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	regimenRepo repository.ArvRegimenRepository,
	auditService service.AuditService,
) RegimenUsecase {
	return &regimenUsecase{
		tx:           tx,
		log:          log,
		regimenRepo:  regimenRepo,
		auditService: auditService,
	}
}

// CreateRegimen adds a shared regimen template.
func (u *regimenUsecase) CreateRegimen(ctx context.Context, req *dto.CreateRegimenRequest) (*dto.RegimenResponse, error) {
	regimen := &entity.ArvRegimen{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Drugs:             req.Drugs,
		Dosages:           req.Dosages,
		Frequency:         req.Frequency,
		Contraindications: req.Contraindications,
		SideEffects:       req.SideEffects,
		TreatmentLine:     req.TreatmentLine,
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.regimenRepo.Create(tx, regimen); err != nil {
			u.log.Warnf("Failed to create regimen: %+v", err)
			return err
		}
		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionRegimenCreate,
			Entity:   "arv_regimen",
			EntityID: regimen.ID.String(),
			NewValue: map[string]interface{}{"name": regimen.Name},
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.RegimenToResponse(regimen), nil
}

func (u *regimenUsecase) GetRegimen(ctx context.Context, id uuid.UUID) (*dto.RegimenResponse, error) {
	regimen, err := u.regimenRepo.FindByID(u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find regimen %s: %+v", id, err)
		return nil, err
	}
	if regimen == nil {
		return nil, apperror.NotFound("regimen %s not found", id)
	}
	return converter.RegimenToResponse(regimen), nil
}

func (u *regimenUsecase) ListRegimens(ctx context.Context, templatesOnly bool) (*dto.RegimenListResponse, error) {
	regimens, err := u.regimenRepo.FindAll(u.tx.DB(ctx), templatesOnly)
	if err != nil {
		u.log.Warnf("Failed to find regimens: %+v", err)
		return nil, err
	}
	return &dto.RegimenListResponse{
		Regimens: converter.RegimensToResponses(regimens),
		Total:    len(regimens),
	}, nil
}
