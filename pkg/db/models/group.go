package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Group carries the authoritative monthly fee used by the debt generator.
// A nil fee falls back to the configured default at billing time.
type Group struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string           `gorm:"column:name;not null" json:"name"`
	MonthlyFee *decimal.Decimal `gorm:"column:monthly_fee;type:numeric(12,2)" json:"monthlyFee,omitempty"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
