package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserLogin           = "user.login"
	AuditActionUserLogout          = "user.logout"
	AuditActionUserRegister        = "user.register"
	AuditActionUserCreate          = "user.create"
	AuditActionBookingCreate       = "booking.create"
	AuditActionBookingStatus       = "booking.status"
	AuditActionBookingCancel       = "booking.cancel"
	AuditActionBookingMeetLink     = "booking.meet_link"
	AuditActionResultCreate        = "result.create"
	AuditActionRegimenCreate       = "regimen.create"
	AuditActionRegimenClone        = "regimen.clone"
	AuditActionServiceCreate       = "service.create"
	AuditActionServiceUpdate       = "service.update"
	AuditActionDoctorCreate        = "doctor.create"
	AuditActionDoctorUpdate        = "doctor.update"
	AuditActionDoctorDeactivate    = "doctor.deactivate"
	AuditActionServiceCategoryEdit = "service_category.create"
)

// AuditLogFilter narrows the audit trail listing.
type AuditLogFilter struct {
	UserID *uuid.UUID
	Action string
	Limit  int
	Offset int
}
