package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address_id TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  coupon_code TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	subOrders := `
CREATE TABLE IF NOT EXISTS sub_orders (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  shop_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'processing',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  shipping_fee_cents INTEGER NOT NULL DEFAULT 0,
  cancelled_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  sub_order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  product_name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	shipments := `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  sub_order_id TEXT NOT NULL UNIQUE,
  shipper_id TEXT,
  tracking_number TEXT,
  estimated_delivery_date DATETIME,
  actual_delivery_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(subOrders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(shipments).Error)
	return db
}

func createOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time, paymentStatus enums.PaymentStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCard,
		PaymentStatus:     paymentStatus,
		SubtotalCents:     5000,
		TotalCents:        5500,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createSubOrder(t *testing.T, db *gorm.DB, orderID uuid.UUID, status enums.SubOrderStatus, created time.Time, shipperID *uuid.UUID) *models.SubOrder {
	t.Helper()

	subOrder := &models.SubOrder{
		ID:               uuid.New(),
		OrderID:          orderID,
		ShopID:           uuid.New(),
		Status:           status,
		SubtotalCents:    5000,
		TotalCents:       5500,
		ShippingFeeCents: 500,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
	require.NoError(t, db.Create(subOrder).Error)

	item := &models.OrderItem{
		ID:             uuid.New(),
		SubOrderID:     subOrder.ID,
		ProductID:      uuid.New(),
		ProductName:    "Oak Table",
		UnitPriceCents: 5000,
		Quantity:       1,
		TotalCents:     5000,
		CreatedAt:      created,
	}
	require.NoError(t, db.Create(item).Error)

	shipment := &models.Shipment{
		ID:         uuid.New(),
		SubOrderID: subOrder.ID,
		ShipperID:  shipperID,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, db.Create(shipment).Error)
	return subOrder
}

func TestRepositoryClaimShipment_singleWinner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createOrder(t, db, uuid.New(), now, enums.PaymentStatusPaid)
	subOrder := createSubOrder(t, db, order.ID, enums.SubOrderStatusProcessing, now, nil)

	winner := uuid.New()
	rows, err := repo.ClaimShipment(context.Background(), subOrder.ID, winner, "TRK-1", now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.ClaimShipment(context.Background(), subOrder.ID, uuid.New(), "TRK-2", now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	shipment, err := repo.FindShipmentBySubOrder(context.Background(), subOrder.ID)
	require.NoError(t, err)
	require.NotNil(t, shipment.ShipperID)
	assert.Equal(t, winner, *shipment.ShipperID)
	require.NotNil(t, shipment.TrackingNumber)
	assert.Equal(t, "TRK-1", *shipment.TrackingNumber)
}

func TestRepositoryTransitionSubOrder_conditional(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createOrder(t, db, uuid.New(), now, enums.PaymentStatusPaid)
	subOrder := createSubOrder(t, db, order.ID, enums.SubOrderStatusProcessing, now, nil)

	rows, err := repo.TransitionSubOrder(context.Background(), subOrder.ID, []enums.SubOrderStatus{enums.SubOrderStatusProcessing}, enums.SubOrderStatusShipped, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// Same transition again no longer matches the source status.
	rows, err = repo.TransitionSubOrder(context.Background(), subOrder.ID, []enums.SubOrderStatus{enums.SubOrderStatusProcessing}, enums.SubOrderStatusShipped, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	delivered := now.Add(time.Hour)
	rows, err = repo.TransitionSubOrder(context.Background(), subOrder.ID, []enums.SubOrderStatus{enums.SubOrderStatusShipped}, enums.SubOrderStatusDelivered, map[string]any{"delivered_at": delivered})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	reloaded, err := repo.FindSubOrder(context.Background(), subOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubOrderStatusDelivered, reloaded.Status)
	require.NotNil(t, reloaded.DeliveredAt)
}

func TestRepositoryMarkOrderPaid_releasesPendingSubOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createOrder(t, db, uuid.New(), now, enums.PaymentStatusPending)
	createSubOrder(t, db, order.ID, enums.SubOrderStatusPending, now.Add(-time.Minute), nil)
	createSubOrder(t, db, order.ID, enums.SubOrderStatusPending, now, nil)

	rows, err := repo.MarkOrderPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// A second confirmation finds nothing pending.
	rows, err = repo.MarkOrderPaid(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	released, err := repo.ReleasePendingSubOrders(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, released, 2)
	for _, so := range released {
		assert.Equal(t, enums.SubOrderStatusProcessing, so.Status)
	}
}

func TestRepositoryListAvailableSubOrders_excludesClaimedAndPending(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createOrder(t, db, uuid.New(), now, enums.PaymentStatusPaid)
	open := createSubOrder(t, db, order.ID, enums.SubOrderStatusProcessing, now, nil)
	claimedBy := uuid.New()
	createSubOrder(t, db, order.ID, enums.SubOrderStatusProcessing, now.Add(-time.Minute), &claimedBy)
	createSubOrder(t, db, order.ID, enums.SubOrderStatusPending, now.Add(-2*time.Minute), nil)

	list, err := repo.ListAvailableSubOrders(context.Background(), nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	require.NotNil(t, list[0].Shipment)
	assert.Nil(t, list[0].Shipment.ShipperID)
}

func TestRepositoryListSubOrdersByShipper(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	order := createOrder(t, db, uuid.New(), now, enums.PaymentStatusPaid)
	shipperID := uuid.New()
	otherShipper := uuid.New()
	mine := createSubOrder(t, db, order.ID, enums.SubOrderStatusShipped, now, &shipperID)
	createSubOrder(t, db, order.ID, enums.SubOrderStatusShipped, now.Add(-time.Minute), &otherShipper)
	createSubOrder(t, db, order.ID, enums.SubOrderStatusProcessing, now.Add(-2*time.Minute), nil)

	list, err := repo.ListSubOrdersByShipper(context.Background(), shipperID, nil, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
}

func TestRepositoryListOrdersByUser_cursorPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	now := time.Now().UTC()
	oldest := createOrder(t, db, userID, now.Add(-2*time.Hour), enums.PaymentStatusPaid)
	middle := createOrder(t, db, userID, now.Add(-time.Hour), enums.PaymentStatusPaid)
	newest := createOrder(t, db, userID, now, enums.PaymentStatusPaid)
	createOrder(t, db, uuid.New(), now, enums.PaymentStatusPaid)

	first, err := repo.ListOrdersByUser(context.Background(), userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.ListOrdersByUser(context.Background(), userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
}
