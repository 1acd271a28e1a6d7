package models

import (
	"time"

	"github.com/google/uuid"
)

// Shipment is the 1:1 delivery record of a sub-order. Created empty at
// checkout; ShipperID is set exactly once by the winning accept call and
// ActualDeliveryDate when the claiming shipper completes the delivery.
// Lifecycle state lives on the sub-order, not here.
type Shipment struct {
	ID                    uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubOrderID            uuid.UUID  `gorm:"column:sub_order_id;type:uuid;not null;uniqueIndex"`
	ShipperID             *uuid.UUID `gorm:"column:shipper_id;type:uuid"`
	TrackingNumber        *string    `gorm:"column:tracking_number"`
	EstimatedDeliveryDate *time.Time `gorm:"column:estimated_delivery_date"`
	ActualDeliveryDate    *time.Time `gorm:"column:actual_delivery_date"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
