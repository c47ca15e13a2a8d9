package enrollments

import (
	"time"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	"github.com/bolajoy/bolajoy-backend/pkg/pagination"
)

// SubmitInput carries a parent-facing enrollment application.
type SubmitInput struct {
	ChildName        string
	ChildBirthDate   time.Time
	ParentName       string
	ParentPhone      string
	ParentEmail      string
	Note             string
	ContractAccepted bool
}

// UpdateInput edits a pending application. Nil fields are left untouched.
type UpdateInput struct {
	ChildName      *string
	ChildBirthDate *time.Time
	ParentName     *string
	ParentPhone    *string
	ParentEmail    *string
	Note           *string
}

// TransitionInput moves an application to a terminal status.
type TransitionInput struct {
	Ref    string
	Target enums.ApplicationStatus
	Reason string
}

// ListFilter narrows and pages the reviewer listing.
type ListFilter struct {
	Status *enums.ApplicationStatus
	Params pagination.Params
}

// ListResult is one page of applications plus paging metadata.
type ListResult struct {
	Applications []models.Application
	Page         pagination.Page
}
