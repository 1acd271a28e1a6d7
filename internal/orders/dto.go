package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	"github.com/thunww/Furniture-Web-sub002/pkg/pagination"
)

// TransitionInput identifies a shipper-side lifecycle call.
type TransitionInput struct {
	SubOrderID uuid.UUID
	ShipperID  uuid.UUID
}

// CancelInput identifies a cancellation and who is asking for it.
type CancelInput struct {
	SubOrderID uuid.UUID
	ActorID    uuid.UUID
	Actor      enums.CancelActor
}

// ListInput carries cursor pagination for order listings.
type ListInput struct {
	Params pagination.Params
}

// ItemView is one immutable order item snapshot.
type ItemView struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	DiscountCents  int        `json:"discount_cents"`
	TotalCents     int        `json:"total_cents"`
}

// ShipmentView is the delivery record attached to a sub-order.
type ShipmentView struct {
	ShipperID             *uuid.UUID `json:"shipper_id,omitempty"`
	TrackingNumber        *string    `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time `json:"actual_delivery_date,omitempty"`
}

// SubOrderView is the client representation of a sub-order.
type SubOrderView struct {
	ID               uuid.UUID            `json:"id"`
	OrderID          uuid.UUID            `json:"order_id"`
	ShopID           uuid.UUID            `json:"shop_id"`
	Status           enums.SubOrderStatus `json:"status"`
	SubtotalCents    int                  `json:"subtotal_cents"`
	DiscountCents    int                  `json:"discount_cents"`
	ShippingFeeCents int                  `json:"shipping_fee_cents"`
	TotalCents       int                  `json:"total_cents"`
	Items            []ItemView           `json:"items,omitempty"`
	Shipment         *ShipmentView        `json:"shipment,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	DeliveredAt      *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// OrderView is the client representation of a parent order.
type OrderView struct {
	ID            uuid.UUID           `json:"id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	SubtotalCents int                 `json:"subtotal_cents"`
	DiscountCents int                 `json:"discount_cents"`
	TotalCents    int                 `json:"total_cents"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	SubOrders     []SubOrderView      `json:"sub_orders"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderPage is one page of a customer's order history.
type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

// SubOrderPage is one page of a shipper-facing sub-order listing.
type SubOrderPage struct {
	SubOrders  []SubOrderView `json:"sub_orders"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

func buildItemView(item models.OrderItem) ItemView {
	return ItemView{
		ID:             item.ID,
		ProductID:      item.ProductID,
		VariantID:      item.VariantID,
		ProductName:    item.ProductName,
		UnitPriceCents: item.UnitPriceCents,
		Quantity:       item.Quantity,
		DiscountCents:  item.DiscountCents,
		TotalCents:     item.TotalCents,
	}
}

func buildSubOrderView(so models.SubOrder) SubOrderView {
	view := SubOrderView{
		ID:               so.ID,
		OrderID:          so.OrderID,
		ShopID:           so.ShopID,
		Status:           so.Status,
		SubtotalCents:    so.SubtotalCents,
		DiscountCents:    so.DiscountCents,
		ShippingFeeCents: so.ShippingFeeCents,
		TotalCents:       so.TotalCents,
		CancelledAt:      so.CancelledAt,
		DeliveredAt:      so.DeliveredAt,
		CreatedAt:        so.CreatedAt,
	}
	for _, item := range so.Items {
		view.Items = append(view.Items, buildItemView(item))
	}
	if so.Shipment != nil {
		view.Shipment = &ShipmentView{
			ShipperID:             so.Shipment.ShipperID,
			TrackingNumber:        so.Shipment.TrackingNumber,
			EstimatedDeliveryDate: so.Shipment.EstimatedDeliveryDate,
			ActualDeliveryDate:    so.Shipment.ActualDeliveryDate,
		}
	}
	return view
}

func buildOrderView(order models.Order) OrderView {
	view := OrderView{
		ID:            order.ID,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		CouponCode:    order.CouponCode,
		CreatedAt:     order.CreatedAt,
	}
	for _, so := range order.SubOrders {
		view.SubOrders = append(view.SubOrders, buildSubOrderView(so))
	}
	return view
}
