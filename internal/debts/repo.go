package debts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a debts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debt *models.Debt) (*models.Debt, error) {
	if err := r.db.WithContext(ctx).Create(debt).Error; err != nil {
		return nil, err
	}
	return debt, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	var debt models.Debt
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&debt).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Debt, error) {
	query := r.db.WithContext(ctx).Model(&models.Debt{})
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var out []models.Debt
	if err := query.Order("due_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListByMonth(ctx context.Context, month string) ([]models.Debt, error) {
	var out []models.Debt
	err := r.db.WithContext(ctx).
		Where("month = ?", month).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListNonPaid(ctx context.Context) ([]models.Debt, error) {
	var out []models.Debt
	err := r.db.WithContext(ctx).
		Where("status <> ?", enums.DebtStatusPaid).
		Order("due_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, debt *models.Debt) (*models.Debt, error) {
	if err := r.db.WithContext(ctx).Save(debt).Error; err != nil {
		return nil, err
	}
	return debt, nil
}

func (r *repository) DeleteByMonth(ctx context.Context, month string, nonPaidOnly bool) error {
	query := r.db.WithContext(ctx).Where("month = ?", month)
	if nonPaidOnly {
		query = query.Where("status <> ?", enums.DebtStatusPaid)
	}
	return query.Delete(&models.Debt{}).Error
}

func (r *repository) StampLastReminder(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("id IN ?", ids).
		Update("last_reminder", at).Error
}
