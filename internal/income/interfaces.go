package income

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
)

// Repository defines the persistence surface required by the income service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DeliveredByShipper(ctx context.Context, shipperID uuid.UUID, start, end time.Time) ([]models.SubOrder, error)
}
