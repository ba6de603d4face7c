package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is a purchasable item type. UnitCost is optional; requests
// against a category without one cost zero.
type Category struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Description string              `gorm:"type:text;not null" json:"description"`
	UnitCost    decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"unit_cost"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
