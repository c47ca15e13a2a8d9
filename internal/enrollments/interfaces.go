package enrollments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
)

// Repository persists enrollment applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByLegacyID(ctx context.Context, legacyID string) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) (*models.Application, error)
	List(ctx context.Context, filter ListFilter) ([]models.Application, int64, error)
	LastByPhone(ctx context.Context, phone string, limit int) ([]models.Application, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}
