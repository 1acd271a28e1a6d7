package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Preload("SubOrders.Shipment").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	var subOrder models.SubOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		Where("id = ?", id).
		First(&subOrder).Error
	if err != nil {
		return nil, err
	}
	return &subOrder, nil
}

func (r *repository) FindShipmentBySubOrder(ctx context.Context, subOrderID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Where("sub_order_id = ?", subOrderID).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) TransitionSubOrder(ctx context.Context, id uuid.UUID, from []enums.SubOrderStatus, to enums.SubOrderStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ClaimShipment(ctx context.Context, subOrderID, shipperID uuid.UUID, trackingNumber string, estimatedDelivery time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("sub_order_id = ? AND shipper_id IS NULL", subOrderID).
		Updates(map[string]any{
			"shipper_id":              shipperID,
			"tracking_number":         trackingNumber,
			"estimated_delivery_date": estimatedDelivery,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateShipment(ctx context.Context, subOrderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("sub_order_id = ?", subOrderID).
		Updates(updates).Error
}

func (r *repository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusPaid)
	return res.RowsAffected, res.Error
}

func (r *repository) ReleasePendingSubOrders(ctx context.Context, orderID uuid.UUID) ([]models.SubOrder, error) {
	err := r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("order_id = ? AND status = ?", orderID, enums.SubOrderStatusPending).
		Update("status", enums.SubOrderStatusProcessing).Error
	if err != nil {
		return nil, err
	}

	var released []models.SubOrder
	err = r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.SubOrderStatusProcessing).
		Order("created_at ASC").
		Find(&released).Error
	return released, err
}

func (r *repository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("SubOrders.Items").
		Preload("SubOrders.Shipment").
		Where("user_id = ?", userID)
	query = applyCursor(query, cursor)

	var orders []models.Order
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *repository) ListAvailableSubOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		Joins("JOIN shipments ON shipments.sub_order_id = sub_orders.id").
		Where("sub_orders.status = ? AND shipments.shipper_id IS NULL", enums.SubOrderStatusProcessing)
	query = applySubOrderCursor(query, cursor)

	var subOrders []models.SubOrder
	err := query.
		Order("sub_orders.created_at DESC").
		Order("sub_orders.id DESC").
		Limit(limit).
		Find(&subOrders).Error
	return subOrders, err
}

func (r *repository) ListSubOrdersByShipper(ctx context.Context, shipperID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.SubOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		Joins("JOIN shipments ON shipments.sub_order_id = sub_orders.id").
		Where("shipments.shipper_id = ?", shipperID)
	query = applySubOrderCursor(query, cursor)

	var subOrders []models.SubOrder
	err := query.
		Order("sub_orders.created_at DESC").
		Order("sub_orders.id DESC").
		Limit(limit).
		Find(&subOrders).Error
	return subOrders, err
}

func applyCursor(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return query
	}
	return query.Where(
		"(created_at, id) < (?, ?)",
		cursor.CreatedAt, cursor.ID,
	)
}

func applySubOrderCursor(query *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return query
	}
	return query.Where(
		"(sub_orders.created_at, sub_orders.id) < (?, ?)",
		cursor.CreatedAt, cursor.ID,
	)
}
