package debts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
)

// Repository persists debt records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debt *models.Debt) (*models.Debt, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	List(ctx context.Context, filter ListFilter) ([]models.Debt, error)
	ListByMonth(ctx context.Context, month string) ([]models.Debt, error)
	ListNonPaid(ctx context.Context) ([]models.Debt, error)
	Update(ctx context.Context, debt *models.Debt) (*models.Debt, error)
	DeleteByMonth(ctx context.Context, month string, nonPaidOnly bool) error
	StampLastReminder(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
