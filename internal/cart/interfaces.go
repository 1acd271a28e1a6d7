package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindLine(ctx context.Context, cartID, lineID uuid.UUID) (*models.CartLine, error)
	FindLineByProduct(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, updates map[string]any) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteLines(ctx context.Context, lineIDs []uuid.UUID) error
	SetAllSelected(ctx context.Context, cartID uuid.UUID, selected bool) error
}

// ProductInfo is the catalog snapshot needed to price and stock-check a line.
type ProductInfo struct {
	ProductID      uuid.UUID
	VariantID      *uuid.UUID
	ShopID         uuid.UUID
	Name           string
	UnitPriceCents int
	AvailableStock int
}

// ProductCatalog resolves product pricing and stock from the catalog service.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*ProductInfo, error)
}
