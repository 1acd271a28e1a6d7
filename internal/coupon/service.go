package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/redis"
)

// Evaluation is the outcome of validating a coupon against a cart subtotal.
type Evaluation struct {
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	SubtotalCents int                `json:"subtotal_cents"`
	DiscountCents int                `json:"discount_cents"`
	TotalCents    int                `json:"total_cents"`
}

// Service defines coupon operations for the storefront.
type Service interface {
	Validate(ctx context.Context, userID uuid.UUID, code string) (*Evaluation, error)
	Apply(ctx context.Context, userID uuid.UUID, code string) (*Evaluation, error)
	Remove(ctx context.Context, userID uuid.UUID) error
	AppliedFor(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, code string, subtotalCents int) (*models.Coupon, int, error)
}

type service struct {
	repo       Repository
	cart       CartSubtotals
	applied    AppliedStore
	appliedTTL time.Duration
}

// NewService builds a coupon service with the required dependencies.
func NewService(repo Repository, cart CartSubtotals, applied AppliedStore, appliedTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart subtotals required")
	}
	if applied == nil {
		return nil, fmt.Errorf("applied store required")
	}
	if appliedTTL <= 0 {
		appliedTTL = 2 * time.Hour
	}
	return &service{
		repo:       repo,
		cart:       cart,
		applied:    applied,
		appliedTTL: appliedTTL,
	}, nil
}

func (s *service) Validate(ctx context.Context, userID uuid.UUID, code string) (*Evaluation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	subtotal, err := s.cart.SelectedSubtotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	coupon, discount, err := s.Resolve(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
	}, nil
}

func (s *service) Apply(ctx context.Context, userID uuid.UUID, code string) (*Evaluation, error) {
	eval, err := s.Validate(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	key := s.applied.AppliedCouponKey(userID.String())
	if err := s.applied.Set(ctx, key, eval.Code, s.appliedTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store applied coupon")
	}
	return eval, nil
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	key := s.applied.AppliedCouponKey(userID.String())
	if err := s.applied.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove applied coupon")
	}
	return nil
}

// AppliedFor returns the coupon code the user has applied, or "" when none.
func (s *service) AppliedFor(ctx context.Context, userID uuid.UUID) (string, error) {
	key := s.applied.AppliedCouponKey(userID.String())
	code, err := s.applied.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load applied coupon")
	}
	return code, nil
}

// Resolve loads the coupon, checks eligibility against the subtotal, and
// returns the discount it grants.
func (s *service) Resolve(ctx context.Context, code string, subtotalCents int) (*models.Coupon, int, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !coupon.Active {
		return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
	}
	if coupon.ExpiresAt != nil && !coupon.ExpiresAt.After(time.Now()) {
		return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired")
	}
	if coupon.MinOrderValueCents != nil && subtotalCents < *coupon.MinOrderValueCents {
		return nil, 0, pkgerrors.New(pkgerrors.CodeStateConflict, "order value below coupon minimum").WithDetails(map[string]any{
			"minimum_cents":  *coupon.MinOrderValueCents,
			"subtotal_cents": subtotalCents,
		})
	}

	return coupon, EvaluateDiscount(coupon, subtotalCents), nil
}

// EvaluateDiscount computes the discount in cents a coupon grants against the
// given subtotal. Percentage discounts round down; the result is clamped to
// the coupon cap and never exceeds the subtotal.
func EvaluateDiscount(coupon *models.Coupon, subtotalCents int) int {
	if coupon == nil || subtotalCents <= 0 {
		return 0
	}

	var discount int
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		pct := decimal.NewFromInt(int64(coupon.DiscountValue)).Div(decimal.NewFromInt(100))
		discount = int(decimal.NewFromInt(int64(subtotalCents)).Mul(pct).Floor().IntPart())
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return 0
	}

	if coupon.MaxDiscountCents != nil && discount > *coupon.MaxDiscountCents {
		discount = *coupon.MaxDiscountCents
	}
	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
