package usecase

import (
	"context"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/pkg/apperror"

	"github.com/sirupsen/logrus"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, filter entity.AuditLogFilter) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		tx:           tx,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, filter entity.AuditLogFilter) (*dto.AuditLogListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, total, err := u.auditLogRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:   converter.AuditLogsToResponses(logs),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.tx.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, apperror.NotFound("audit log %d not found", id)
	}

	return converter.AuditLogToResponse(auditLog), nil
}
