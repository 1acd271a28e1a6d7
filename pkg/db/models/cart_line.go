package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one product (optionally one variant) in a cart. Unique per
// (cart, product, variant); adding the same product again merges quantities.
type CartLine struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID  `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_product_variant"`
	ShopID         uuid.UUID  `gorm:"column:shop_id;type:uuid;not null"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_product_variant"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid;uniqueIndex:idx_cart_product_variant"`
	ProductName    string     `gorm:"column:product_name;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	Selected       bool       `gorm:"column:selected;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// SubtotalCents returns the line's price contribution.
func (l CartLine) SubtotalCents() int {
	return l.UnitPriceCents * l.Quantity
}
