package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajoy/bolajoy-backend/pkg/enums"
)

// Debt is one child's billing record for one month. ChildRef is stored
// verbatim as received at generation time and may carry either identifier
// generation; only Regenerate rewrites it. The (child_ref, month) unique
// index enforces at-most-one debt per child per month under concurrency.
type Debt struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ChildRef string    `gorm:"column:child_ref;not null;uniqueIndex:ux_debts_child_ref_month" json:"childRef"`
	Month    string    `gorm:"column:month;not null;uniqueIndex:ux_debts_child_ref_month" json:"month"`

	Amount     decimal.Decimal  `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	PaidAmount decimal.Decimal  `gorm:"column:paid_amount;type:numeric(12,2);not null;default:0" json:"paidAmount"`
	Status     enums.DebtStatus `gorm:"column:status;type:debt_status;not null;default:'pending'" json:"status"`

	DueDate      time.Time  `gorm:"column:due_date;not null" json:"dueDate"`
	PaidAt       *time.Time `gorm:"column:paid_at" json:"paidAt,omitempty"`
	LastReminder *time.Time `gorm:"column:last_reminder" json:"lastReminder,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Remaining returns the unpaid balance, never negative.
func (d Debt) Remaining() decimal.Decimal {
	remaining := d.Amount.Sub(d.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DeriveStatus recomputes the payment status from amounts.
func (d Debt) DeriveStatus() enums.DebtStatus {
	switch {
	case d.PaidAmount.GreaterThanOrEqual(d.Amount):
		return enums.DebtStatusPaid
	case d.PaidAmount.IsPositive():
		return enums.DebtStatusPartial
	default:
		return enums.DebtStatusPending
	}
}

// DaysOverdue returns whole days elapsed past the due date at now, zero for
// paid debts and debts not yet due.
func (d Debt) DaysOverdue(now time.Time) int {
	if d.Status == enums.DebtStatusPaid {
		return 0
	}
	overdue := int(now.Sub(d.DueDate).Hours() / 24)
	if overdue < 0 {
		return 0
	}
	return overdue
}
