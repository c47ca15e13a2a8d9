// Package payloads defines the event bodies carried inside outbox envelopes.
// Downstream notification workers consume these; the API never waits on them.
package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajoy/bolajoy-backend/pkg/enums"
)

// ApplicationSubmittedEvent signals a new enrollment application awaiting review.
type ApplicationSubmittedEvent struct {
	ApplicationID uuid.UUID `json:"application_id"`
	ChildName     string    `json:"child_name"`
	ParentName    string    `json:"parent_name"`
	ParentPhone   string    `json:"parent_phone"`
	ParentEmail   string    `json:"parent_email"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ApplicationDecidedEvent is emitted when a reviewer accepts or rejects.
type ApplicationDecidedEvent struct {
	ApplicationID   uuid.UUID               `json:"application_id"`
	ChildName       string                  `json:"child_name"`
	ParentPhone     string                  `json:"parent_phone"`
	ParentEmail     string                  `json:"parent_email"`
	Status          enums.ApplicationStatus `json:"status"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	ProcessedAt     time.Time               `json:"processed_at"`
}

// ChildProvisionedEvent reports the child record created from an acceptance.
type ChildProvisionedEvent struct {
	ChildID       uuid.UUID `json:"child_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EnrolledAt    time.Time `json:"enrolled_at"`
}

// DebtorLine is one row of a reminder report.
type DebtorLine struct {
	ChildName string          `json:"child_name"`
	GroupName string          `json:"group_name,omitempty"`
	Month     string          `json:"month"`
	Remaining decimal.Decimal `json:"remaining"`
	Overdue   bool            `json:"overdue"`
}

// DebtReminderEvent covers a single-debt reminder.
type DebtReminderEvent struct {
	DebtID      uuid.UUID       `json:"debt_id"`
	ChildRef    string          `json:"child_ref"`
	ChildName   string          `json:"child_name"`
	ParentPhone string          `json:"parent_phone,omitempty"`
	Month       string          `json:"month"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// DebtReminderBatchEvent is the single aggregate report sent per remind-all
// run; the batch is one notification, never one per debtor.
type DebtReminderBatchEvent struct {
	DebtorCount int             `json:"debtor_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []DebtorLine    `json:"lines"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// LedgerGeneratedEvent records the outcome of a monthly billing run.
type LedgerGeneratedEvent struct {
	Month        string    `json:"month"`
	CreatedCount int       `json:"created_count"`
	Regenerated  bool      `json:"regenerated"`
	RanAt        time.Time `json:"ran_at"`
}
