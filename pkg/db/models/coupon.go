package models

import (
	"time"

	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
)

// Coupon is read-only reference data for the storefront. DiscountValue is a
// percentage for percentage coupons and an amount in cents for fixed ones.
type Coupon struct {
	Code               string             `gorm:"column:code;primaryKey"`
	DiscountType       enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue      int                `gorm:"column:discount_value;not null"`
	MaxDiscountCents   *int               `gorm:"column:max_discount_cents"`
	MinOrderValueCents *int               `gorm:"column:min_order_value_cents"`
	ExpiresAt          *time.Time         `gorm:"column:expires_at"`
	Active             bool               `gorm:"column:active;not null;default:true"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
