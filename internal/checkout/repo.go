package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder persists the full order graph: the parent, its sub-orders, the
// item snapshots, and one empty shipment per sub-order.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

type lineRemover struct{}

// NewLineRemover deletes cart lines inside the checkout transaction.
func NewLineRemover() LineRemover {
	return lineRemover{}
}

func (lineRemover) DeleteLines(ctx context.Context, tx *gorm.DB, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Where("id IN ?", lineIDs).
		Delete(&models.CartLine{}).Error
}
