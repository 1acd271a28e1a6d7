package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Repository defines the persistence surface required by checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
}

// CartReader exposes the cart operations checkout consumes.
type CartReader interface {
	SelectedLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
}

// LineRemover deletes checked-out cart lines inside the checkout transaction.
type LineRemover interface {
	DeleteLines(ctx context.Context, tx *gorm.DB, lineIDs []uuid.UUID) error
}

// CouponResolver re-validates the applied coupon at checkout time.
type CouponResolver interface {
	AppliedFor(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, code string, subtotalCents int) (*models.Coupon, int, error)
	Remove(ctx context.Context, userID uuid.UUID) error
}

// AddressBook verifies the shipping address belongs to the user.
type AddressBook interface {
	Exists(ctx context.Context, userID, addressID uuid.UUID) (bool, error)
}

// ShippingQuoter prices delivery for one shop's slice of the order.
type ShippingQuoter interface {
	Quote(ctx context.Context, shopID uuid.UUID, subtotalCents int) (int, error)
}

// FlatFeeQuoter charges the same fee for every sub-order.
type FlatFeeQuoter struct {
	FeeCents int
}

func (q FlatFeeQuoter) Quote(ctx context.Context, shopID uuid.UUID, subtotalCents int) (int, error) {
	return q.FeeCents, nil
}
