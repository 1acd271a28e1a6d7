package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Repository defines the persistence surface required by the lifecycle service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error)
	FindShipmentBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*models.Shipment, error)

	// TransitionSubOrder flips status only when the current status is one of
	// from; the returned count is the number of rows changed (0 or 1).
	TransitionSubOrder(ctx context.Context, id uuid.UUID, from []enums.SubOrderStatus, to enums.SubOrderStatus, extra map[string]any) (int64, error)

	// ClaimShipment sets shipper_id only when no shipper holds the claim yet.
	ClaimShipment(ctx context.Context, subOrderID, shipperID uuid.UUID, trackingNumber string, estimatedDelivery time.Time) (int64, error)
	UpdateShipment(ctx context.Context, subOrderID uuid.UUID, updates map[string]any) error

	MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (int64, error)
	ReleasePendingSubOrders(ctx context.Context, orderID uuid.UUID) ([]models.SubOrder, error)

	ListOrdersByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListAvailableSubOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error)
	ListSubOrdersByShipper(ctx context.Context, shipperID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error)
}
