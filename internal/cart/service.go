package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
)

// Service defines cart operations for the storefront.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, input UpdateQuantityInput) (*View, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*View, error)
	SelectItem(ctx context.Context, userID, lineID uuid.UUID, selected bool) (*View, error)
	SelectAll(ctx context.Context, userID uuid.UUID, selected bool) (*View, error)
	SelectedLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	SelectedSubtotal(ctx context.Context, userID uuid.UUID) (int, error)
}

type service struct {
	repo    Repository
	catalog ProductCatalog
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalog ProductCatalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildView(cart), nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*View, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	info, err := s.catalog.Lookup(ctx, input.ProductID, input.VariantID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	cart, err := s.ensureCart(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLineByProduct(ctx, cart.ID, input.ProductID, input.VariantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	if existing != nil {
		// Adding an item already in the cart merges quantities; the merged
		// total still has to fit within available stock.
		merged := existing.Quantity + input.Quantity
		if merged > info.AvailableStock {
			return nil, outOfStock(info, merged)
		}
		updates := map[string]any{
			"quantity":         merged,
			"unit_price_cents": info.UnitPriceCents,
		}
		if err := s.repo.UpdateLine(ctx, existing.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		return s.Get(ctx, input.UserID)
	}

	if input.Quantity > info.AvailableStock {
		return nil, outOfStock(info, input.Quantity)
	}

	line := &models.CartLine{
		CartID:         cart.ID,
		ShopID:         info.ShopID,
		ProductID:      input.ProductID,
		VariantID:      input.VariantID,
		ProductName:    info.Name,
		UnitPriceCents: info.UnitPriceCents,
		Quantity:       input.Quantity,
		Selected:       true,
	}
	if _, err := s.repo.CreateLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
	}
	return s.Get(ctx, input.UserID)
}

func (s *service) UpdateQuantity(ctx context.Context, input UpdateQuantityInput) (*View, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.LineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	_, line, err := s.findLine(ctx, input.UserID, input.LineID)
	if err != nil {
		return nil, err
	}

	info, err := s.catalog.Lookup(ctx, line.ProductID, line.VariantID)
	if err != nil {
		return nil, err
	}
	if info != nil && input.Quantity > info.AvailableStock {
		return nil, outOfStock(info, input.Quantity)
	}

	if err := s.repo.UpdateLine(ctx, line.ID, map[string]any{"quantity": input.Quantity}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.Get(ctx, input.UserID)
}

func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}

	_, line, err := s.findLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) SelectItem(ctx context.Context, userID, lineID uuid.UUID, selected bool) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}

	_, line, err := s.findLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLine(ctx, line.ID, map[string]any{"selected": selected}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) SelectAll(ctx context.Context, userID uuid.UUID, selected bool) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAllSelected(ctx, cart.ID, selected); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart lines")
	}
	return s.Get(ctx, userID)
}

func (s *service) SelectedLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := make([]models.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Selected {
			selected = append(selected, line)
		}
	}
	return selected, nil
}

func (s *service) SelectedSubtotal(ctx context.Context, userID uuid.UUID) (int, error) {
	lines, err := s.SelectedLines(ctx, userID)
	if err != nil {
		return 0, err
	}
	subtotal := 0
	for _, line := range lines {
		subtotal += line.SubtotalCents()
	}
	return subtotal, nil
}

func (s *service) ensureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	created, err := s.repo.Create(ctx, &models.Cart{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) findLine(ctx context.Context, userID, lineID uuid.UUID) (*models.Cart, *models.CartLine, error) {
	cart, err := s.ensureCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	line, err := s.repo.FindLine(ctx, cart.ID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	return cart, line, nil
}

func outOfStock(info *ProductInfo, requested int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").WithDetails(map[string]any{
		"product_id": info.ProductID,
		"available":  info.AvailableStock,
		"requested":  requested,
	})
}
