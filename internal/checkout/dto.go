package checkout

import (
	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
)

// Input carries everything needed to execute a checkout.
type Input struct {
	UserID            uuid.UUID
	ShippingAddressID uuid.UUID
	PaymentMethod     enums.PaymentMethod
	ActorRole         string
	RedirectURL       string
}

// SubOrderSummary is the per-shop slice of the checkout result.
type SubOrderSummary struct {
	ID               uuid.UUID            `json:"id"`
	ShopID           uuid.UUID            `json:"shop_id"`
	Status           enums.SubOrderStatus `json:"status"`
	SubtotalCents    int                  `json:"subtotal_cents"`
	DiscountCents    int                  `json:"discount_cents"`
	ShippingFeeCents int                  `json:"shipping_fee_cents"`
	TotalCents       int                  `json:"total_cents"`
	ItemCount        int                  `json:"item_count"`
}

// Result is returned to the client after a successful checkout.
type Result struct {
	OrderID        uuid.UUID           `json:"order_id"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	SubtotalCents  int                 `json:"subtotal_cents"`
	DiscountCents  int                 `json:"discount_cents"`
	TotalCents     int                 `json:"total_cents"`
	CouponCode     *string             `json:"coupon_code,omitempty"`
	SubOrders      []SubOrderSummary   `json:"sub_orders"`
	PaymentLinkURL *string             `json:"payment_link_url,omitempty"`
}

type shopGroup struct {
	shopID uuid.UUID
	lines  []int // indexes into the selected lines slice
}
