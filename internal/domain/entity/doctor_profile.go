package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorProfile represents doctor-specific profile data, including the
// working pattern used for slot generation.
type DoctorProfile struct {
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization string    `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Qualification  string    `gorm:"type:varchar(255)" json:"qualification,omitempty"`
	Biography      string    `gorm:"type:text" json:"biography,omitempty"`
	WorkingDays    Weekdays  `gorm:"type:varchar(20);not null" json:"working_days"`
	ActiveFrom     time.Time `gorm:"type:date" json:"active_from"`
	ActiveTo       time.Time `gorm:"type:date" json:"active_to"`
	StartTime      string    `gorm:"type:varchar(5);not null" json:"start_time"` // Format: HH:MM
	EndTime        string    `gorm:"type:varchar(5);not null" json:"end_time"`   // Format: HH:MM

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
