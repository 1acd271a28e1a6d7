package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
)

// SubOrder is the per-shop slice of a parent order. Each one moves through
// the delivery lifecycle independently of its siblings.
type SubOrder struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	ShopID           uuid.UUID            `gorm:"column:shop_id;type:uuid;not null"`
	Status           enums.SubOrderStatus `gorm:"column:status;type:sub_order_status;not null;default:'processing'"`
	SubtotalCents    int                  `gorm:"column:subtotal_cents;not null"`
	DiscountCents    int                  `gorm:"column:discount_cents;not null;default:0"`
	TotalCents       int                  `gorm:"column:total_cents;not null"`
	ShippingFeeCents int                  `gorm:"column:shipping_fee_cents;not null;default:0"`
	Items            []OrderItem          `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
	Shipment         *Shipment            `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
	CancelledAt      *time.Time           `gorm:"column:cancelled_at"`
	DeliveredAt      *time.Time           `gorm:"column:delivered_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
