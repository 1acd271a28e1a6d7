package coupon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
)

// Repository defines the persistence surface required by the coupon service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// CartSubtotals exposes the selected-line subtotal a coupon is judged against.
type CartSubtotals interface {
	SelectedSubtotal(ctx context.Context, userID uuid.UUID) (int, error)
}

// AppliedStore persists which coupon a user currently has applied.
type AppliedStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AppliedCouponKey(userID string) string
}
