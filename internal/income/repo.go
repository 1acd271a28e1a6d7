package income

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an income repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) DeliveredByShipper(ctx context.Context, shipperID uuid.UUID, start, end time.Time) ([]models.SubOrder, error) {
	var subOrders []models.SubOrder
	err := r.db.WithContext(ctx).
		Preload("Shipment").
		Joins("JOIN shipments ON shipments.sub_order_id = sub_orders.id").
		Where("sub_orders.status = ?", enums.SubOrderStatusDelivered).
		Where("shipments.shipper_id = ?", shipperID).
		Where("shipments.actual_delivery_date >= ? AND shipments.actual_delivery_date <= ?", start, end).
		Order("shipments.actual_delivery_date ASC").
		Find(&subOrders).Error
	return subOrders, err
}
