// internal/models/audit_log.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog captures mutating API calls for admin review.
type AuditLog struct {
	BaseModel
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action    string     `json:"action" gorm:"size:100;not null;index"`
	IPAddress string     `json:"ip_address" gorm:"size:45"`
	UserAgent string     `json:"user_agent" gorm:"type:text"`
	Payload   JSONB      `json:"payload" gorm:"type:jsonb"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
