package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateApplication OutboxAggregateType = "application"
	AggregateChild       OutboxAggregateType = "child"
	AggregateDebt        OutboxAggregateType = "debt"
	AggregateLedger      OutboxAggregateType = "ledger"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateApplication,
	AggregateChild,
	AggregateDebt,
	AggregateLedger,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventApplicationSubmitted OutboxEventType = "application_submitted"
	EventApplicationAccepted  OutboxEventType = "application_accepted"
	EventApplicationRejected  OutboxEventType = "application_rejected"
	EventChildProvisioned     OutboxEventType = "child_provisioned"
	EventDebtReminder         OutboxEventType = "debt_reminder"
	EventDebtReminderBatch    OutboxEventType = "debt_reminder_batch"
	EventLedgerGenerated      OutboxEventType = "ledger_generated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventApplicationSubmitted,
	EventApplicationAccepted,
	EventApplicationRejected,
	EventChildProvisioned,
	EventDebtReminder,
	EventDebtReminderBatch,
	EventLedgerGenerated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
