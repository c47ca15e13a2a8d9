package children

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
)

// Repository persists child records. Enrollment provisioning writes through
// it inside the acceptance transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, child *models.Child) (*models.Child, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Child, error)
	FindByLegacyID(ctx context.Context, legacyID string) (*models.Child, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*models.Child, error)
	FindByFirstTokenAndPhone(ctx context.Context, firstToken, parentPhone string) (*models.Child, error)
	ListActive(ctx context.Context) ([]models.Child, error)
	ListAll(ctx context.Context) ([]models.Child, error)
}
