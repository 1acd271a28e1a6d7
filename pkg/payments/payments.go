package payments

import (
	"context"

	"github.com/google/uuid"
)

// LinkParams describes the redirect payment a checkout needs initiated.
type LinkParams struct {
	OrderID     uuid.UUID
	AmountCents int
	Description string
	RedirectURL string
}

// Link is an opaque reference to an externally hosted payment page.
type Link struct {
	ID  string
	URL string
}

// Initiator creates payment links for card checkouts. COD orders never touch it.
type Initiator interface {
	CreatePaymentLink(ctx context.Context, params LinkParams) (*Link, error)
}
