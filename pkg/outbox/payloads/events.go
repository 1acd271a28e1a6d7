package payloads

import (
	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
)

// OrderCreatedEvent is emitted once per checkout, after the parent order and
// all of its sub-orders have been created.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID   `json:"order_id"`
	UserID      uuid.UUID   `json:"user_id"`
	SubOrderIDs []uuid.UUID `json:"sub_order_ids"`
	TotalCents  int         `json:"total_cents"`
}

// OrderPaidEvent is emitted when payment confirmation releases the pending
// sub-orders of a parent order.
type OrderPaidEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// SubOrderStatusChangedEvent is emitted for every lifecycle transition.
type SubOrderStatusChangedEvent struct {
	SubOrderID uuid.UUID            `json:"sub_order_id"`
	OrderID    uuid.UUID            `json:"order_id"`
	ShopID     uuid.UUID            `json:"shop_id"`
	From       enums.SubOrderStatus `json:"from"`
	To         enums.SubOrderStatus `json:"to"`
	ShipperID  *uuid.UUID           `json:"shipper_id,omitempty"`
}
