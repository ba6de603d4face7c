package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseRequest is an employee's request to buy Quantity items of a
// category. Cost is derived from the category when the request is saved.
// DecidedBy/DecidedAt are filled once the request leaves the pending state.
type PurchaseRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT;" json:"category,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Cost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cost"`
	Justification string          `gorm:"type:text;not null" json:"justification"`
	Status        string          `gorm:"type:varchar(20);not null;index" json:"status"`
	DecidedBy     *uuid.UUID      `gorm:"type:uuid" json:"decided_by"`
	Approver      *User           `gorm:"foreignKey:DecidedBy" json:"approver,omitempty"`
	DecidedAt     *time.Time      `json:"decided_at"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
