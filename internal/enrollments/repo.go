package enrollments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an enrollments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) FindByLegacyID(ctx context.Context, legacyID string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("LOWER(legacy_id) = ? AND deleted_at IS NULL", strings.ToLower(strings.TrimSpace(legacyID))).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) Update(ctx context.Context, app *models.Application) (*models.Application, error) {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("deleted_at IS NULL")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := query.
		Order("submitted_at DESC").
		Limit(pagination.NormalizeLimit(filter.Params.Limit)).
		Offset(filter.Params.Offset()).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *repository) LastByPhone(ctx context.Context, phone string, limit int) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("parent_phone = ? AND deleted_at IS NULL", phone).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
