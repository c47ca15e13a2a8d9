package enums

import "fmt"

// DebtStatus mirrors the payment state of a monthly debt record.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
)

var validDebtStatuses = []DebtStatus{
	DebtStatusPending,
	DebtStatusPartial,
	DebtStatusPaid,
}

// String implements fmt.Stringer.
func (s DebtStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s DebtStatus) IsValid() bool {
	for _, candidate := range validDebtStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDebtStatus converts raw input into a DebtStatus.
func ParseDebtStatus(value string) (DebtStatus, error) {
	for _, candidate := range validDebtStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid debt status %q", value)
}
