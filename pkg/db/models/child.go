package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bolajoy/bolajoy-backend/pkg/identifier"
)

// Child is the authoritative record for an enrolled child. LegacyID survives
// from the pre-migration era and may still be referenced by old debt rows.
// ApplicationID links provisioned records back to the accepted application;
// its unique index is what makes acceptance retries idempotent at the store.
type Child struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LegacyID      *string    `gorm:"column:legacy_id;index" json:"legacyId,omitempty"`
	ApplicationID *uuid.UUID `gorm:"column:application_id;type:uuid;uniqueIndex:ux_children_application_id" json:"applicationId,omitempty"`

	FirstName string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName  string    `gorm:"column:last_name" json:"lastName"`
	BirthDate time.Time `gorm:"column:birth_date;not null" json:"birthDate"`

	ParentName  string `gorm:"column:parent_name;not null" json:"parentName"`
	ParentPhone string `gorm:"column:parent_phone;not null;index" json:"parentPhone"`
	ParentEmail string `gorm:"column:parent_email" json:"parentEmail,omitempty"`

	GroupID *uuid.UUID `gorm:"column:group_id;type:uuid;index" json:"groupId,omitempty"`
	Group   *Group     `gorm:"foreignKey:GroupID" json:"-"`

	EnrolledAt *time.Time `gorm:"column:enrolled_at" json:"enrolledAt,omitempty"`
	Active     bool       `gorm:"column:active;not null;default:true" json:"active"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"-"`

	Points       int            `gorm:"column:points;not null;default:0" json:"points"`
	Level        int            `gorm:"column:level;not null;default:0" json:"level"`
	Achievements pq.StringArray `gorm:"column:achievements;type:text[];default:ARRAY[]::text[]" json:"achievements"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// FullName joins first and last name, tolerating single-name records.
func (c Child) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "unknown"
	}
	return name
}

// IdentifierCandidate exposes both identifier generations for reconciliation.
func (c Child) IdentifierCandidate() identifier.Candidate {
	cand := identifier.Candidate{StoreID: c.ID.String()}
	if c.LegacyID != nil {
		cand.LegacyID = *c.LegacyID
	}
	return cand
}
