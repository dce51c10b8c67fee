package service

import (
	"context"

	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry describes one change to record in the audit trail.
type AuditEntry struct {
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID string
	OldValue interface{}
	NewValue interface{}
}

type AuditService interface {
	// Record writes the entry using tx so it commits or rolls back with the
	// change it describes.
	Record(ctx context.Context, tx *gorm.DB, entry AuditEntry) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, tx *gorm.DB, entry AuditEntry) error {
	auditLog := &entity.AuditLog{
		UserID: entry.UserID,
		Action: entry.Action,
		Metadata: entity.JSON{
			"entity":    entry.Entity,
			"entity_id": entry.EntityID,
			"old_value": entry.OldValue,
			"new_value": entry.NewValue,
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s for %s %s: %+v", entry.Action, entry.Entity, entry.EntityID, err)
		return err
	}

	return nil
}
