// Package catalog provides read-only access to the product and address data
// owned by the storefront side of the platform.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartsvc "github.com/thunww/Furniture-Web-sub002/internal/cart"
	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
)

// ProductReader resolves catalog pricing and stock for cart operations.
type ProductReader struct {
	db *gorm.DB
}

func NewProductReader(db *gorm.DB) (*ProductReader, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &ProductReader{db: db}, nil
}

// Lookup returns the priced snapshot for a product, or its variant when one
// is requested. Inactive rows resolve as not found.
func (r *ProductReader) Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*cartsvc.ProductInfo, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND active", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	info := &cartsvc.ProductInfo{
		ProductID:      product.ID,
		ShopID:         product.ShopID,
		Name:           product.Name,
		UnitPriceCents: product.UnitPriceCents,
		AvailableStock: product.Stock,
	}

	if variantID != nil {
		var variant models.ProductVariant
		err := r.db.WithContext(ctx).
			Where("id = ? AND product_id = ? AND active", *variantID, productID).
			First(&variant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
		}
		info.VariantID = &variant.ID
		info.Name = product.Name + " - " + variant.Name
		info.UnitPriceCents = variant.UnitPriceCents
		info.AvailableStock = variant.Stock
	}

	return info, nil
}

// AddressReader verifies shipping address ownership at checkout.
type AddressReader struct {
	db *gorm.DB
}

func NewAddressReader(db *gorm.DB) (*AddressReader, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &AddressReader{db: db}, nil
}

func (r *AddressReader) Exists(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
