package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bolajoy/bolajoy-backend/pkg/enums"
)

// Application is a parent-submitted enrollment request tracked through the
// pending/accepted/rejected lifecycle. Rows are never physically deleted;
// DeletedAt soft-marks them.
type Application struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LegacyID *string   `gorm:"column:legacy_id;index" json:"legacyId,omitempty"`

	ChildName      string    `gorm:"column:child_name;not null" json:"childName"`
	ChildBirthDate time.Time `gorm:"column:child_birth_date;not null" json:"childBirthDate"`
	ParentName     string    `gorm:"column:parent_name;not null" json:"parentName"`
	ParentPhone    string    `gorm:"column:parent_phone;not null;index" json:"parentPhone"`
	ParentEmail    string    `gorm:"column:parent_email;not null" json:"parentEmail"`
	Note           string    `gorm:"column:note" json:"note,omitempty"`

	ContractAccepted   bool       `gorm:"column:contract_accepted;not null;default:false" json:"contractAccepted"`
	ContractAcceptedAt *time.Time `gorm:"column:contract_accepted_at" json:"contractAcceptedAt,omitempty"`

	Status          enums.ApplicationStatus `gorm:"column:status;type:application_status;not null;default:'pending'" json:"status"`
	RejectionReason *string                 `gorm:"column:rejection_reason" json:"rejectionReason,omitempty"`

	SubmittedAt time.Time  `gorm:"column:submitted_at;not null" json:"submittedAt"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processedAt,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// StatusSummary is the reduced projection returned by the public phone
// lookup; it never exposes more than the caller already supplied.
type StatusSummary struct {
	ID              uuid.UUID               `json:"id"`
	ChildName       string                  `json:"childName"`
	Status          enums.ApplicationStatus `json:"status"`
	SubmittedAt     time.Time               `json:"submittedAt"`
	ProcessedAt     *time.Time              `json:"processedAt,omitempty"`
	RejectionReason *string                 `json:"rejectionReason,omitempty"`
}

// Summary reduces the application to its public status projection.
func (a Application) Summary() StatusSummary {
	return StatusSummary{
		ID:              a.ID,
		ChildName:       a.ChildName,
		Status:          a.Status,
		SubmittedAt:     a.SubmittedAt,
		ProcessedAt:     a.ProcessedAt,
		RejectionReason: a.RejectionReason,
	}
}
