package debts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajoy/bolajoy-backend/pkg/enums"
)

// GenerateInput starts a billing run for one month.
type GenerateInput struct {
	Month   string
	DueDate *time.Time
}

// RegenerateInput wipes and rebuilds a month's ledger against current child ids.
type RegenerateInput struct {
	Month    string
	DueDate  *time.Time
	KeepPaid bool
}

// GenerateResult reports how many debts a run created.
type GenerateResult struct {
	Month        string `json:"month"`
	CreatedCount int    `json:"createdCount"`
}

// ListFilter narrows the reconciled debt listing.
type ListFilter struct {
	Month  *string
	Status *enums.DebtStatus
}

// ReconciledDebt is one debt joined with its resolved child, if any.
type ReconciledDebt struct {
	ID              uuid.UUID        `json:"id"`
	ChildRef        string           `json:"childRef"`
	ChildID         *uuid.UUID       `json:"childId,omitempty"`
	ChildName       string           `json:"childName"`
	GroupName       string           `json:"groupName,omitempty"`
	Month           string           `json:"month"`
	Amount          decimal.Decimal  `json:"amount"`
	PaidAmount      decimal.Decimal  `json:"paidAmount"`
	RemainingAmount decimal.Decimal  `json:"remainingAmount"`
	Status          enums.DebtStatus `json:"status"`
	DueDate         time.Time        `json:"dueDate"`
	DaysOverdue     int              `json:"daysOverdue"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
	LastReminder    *time.Time       `json:"lastReminder,omitempty"`
}

// Stats aggregates a (optionally month-scoped) slice of the ledger.
type Stats struct {
	Month          string           `json:"month,omitempty"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	PaidAmount     decimal.Decimal  `json:"paidAmount"`
	PendingAmount  decimal.Decimal  `json:"pendingAmount"`
	CountsByStatus map[string]int   `json:"countsByStatus"`
	CollectionRate decimal.Decimal  `json:"collectionRate"`
}

// RemindAllResult reports the outcome of a batch reminder run.
type RemindAllResult struct {
	SentCount   int             `json:"sentCount"`
	TotalCount  int             `json:"totalCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
