package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest  = "CREATE_REQUEST"
	ActionUpdateRequest  = "UPDATE_REQUEST"
	ActionDeleteRequest  = "DELETE_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
	ActionChangeStatus   = "CHANGE_REQUEST_STATUS"

	ActionCreateCategory = "CREATE_CATEGORY"
	ActionUpdateCategory = "UPDATE_CATEGORY"
	ActionDeleteCategory = "DELETE_CATEGORY"
)

// AuditLog tracks who changed what and when.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID  string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Details   string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
