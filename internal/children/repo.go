package children

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a children repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, child *models.Child) (*models.Child, error) {
	if err := r.db.WithContext(ctx).Create(child).Error; err != nil {
		return nil, err
	}
	return child, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *repository) FindByLegacyID(ctx context.Context, legacyID string) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("LOWER(legacy_id) = ? AND deleted_at IS NULL", strings.ToLower(strings.TrimSpace(legacyID))).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *repository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

// FindByFirstTokenAndPhone matches the first whitespace token of the child
// name plus the parent phone. It backs the pre-insert duplicate check during
// provisioning; the application_id unique index remains the hard guarantee.
func (r *repository) FindByFirstTokenAndPhone(ctx context.Context, firstToken, parentPhone string) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).
		Where("LOWER(first_name) = ? AND parent_phone = ? AND deleted_at IS NULL",
			strings.ToLower(strings.TrimSpace(firstToken)), parentPhone).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Child, error) {
	var out []models.Child
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("active = ? AND deleted_at IS NULL", true).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns every non-deleted child, inactive ones included. Debt
// reconciliation needs the full population because old debt rows may point
// at children who have since left.
func (r *repository) ListAll(ctx context.Context) ([]models.Child, error) {
	var out []models.Child
	err := r.db.WithContext(ctx).
		Preload("Group").
		Where("deleted_at IS NULL").
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
