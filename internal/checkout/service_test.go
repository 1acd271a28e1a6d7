package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
	"github.com/thunww/Furniture-Web-sub002/pkg/enums"
	pkgerrors "github.com/thunww/Furniture-Web-sub002/pkg/errors"
	"github.com/thunww/Furniture-Web-sub002/pkg/outbox"
	"github.com/thunww/Furniture-Web-sub002/pkg/payments"
)

type stubRepo struct {
	created *models.Order
	err     error
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	order.ID = uuid.New()
	for i := range order.SubOrders {
		order.SubOrders[i].ID = uuid.New()
	}
	r.created = order
	return order, nil
}

type stubTx struct{ err error }

func (s stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubCart struct {
	lines []models.CartLine
	err   error
}

func (c stubCart) SelectedLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return c.lines, c.err
}

type stubLineRemover struct{ deleted []uuid.UUID }

func (l *stubLineRemover) DeleteLines(ctx context.Context, tx *gorm.DB, lineIDs []uuid.UUID) error {
	l.deleted = lineIDs
	return nil
}

type stubCoupons struct {
	applied    string
	coupon     *models.Coupon
	discount   int
	resolveErr error
	removed    bool
}

func (c *stubCoupons) AppliedFor(ctx context.Context, userID uuid.UUID) (string, error) {
	return c.applied, nil
}

func (c *stubCoupons) Resolve(ctx context.Context, code string, subtotalCents int) (*models.Coupon, int, error) {
	if c.resolveErr != nil {
		return nil, 0, c.resolveErr
	}
	return c.coupon, c.discount, nil
}

func (c *stubCoupons) Remove(ctx context.Context, userID uuid.UUID) error {
	c.removed = true
	return nil
}

type stubAddresses struct {
	exists bool
	err    error
}

func (a stubAddresses) Exists(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	return a.exists, a.err
}

type stubOutbox struct{ events []outbox.DomainEvent }

func (o *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

type stubInitiator struct {
	link *payments.Link
	err  error
}

func (s stubInitiator) CreatePaymentLink(ctx context.Context, params payments.LinkParams) (*payments.Link, error) {
	return s.link, s.err
}

func twoShopLines(shopA, shopB uuid.UUID) []models.CartLine {
	return []models.CartLine{
		{ID: uuid.New(), ShopID: shopA, ProductID: uuid.New(), ProductName: "Oak Table", UnitPriceCents: 3000, Quantity: 1, Selected: true},
		{ID: uuid.New(), ShopID: shopA, ProductID: uuid.New(), ProductName: "Oak Chair", UnitPriceCents: 1000, Quantity: 2, Selected: true},
		{ID: uuid.New(), ShopID: shopB, ProductID: uuid.New(), ProductName: "Pine Shelf", UnitPriceCents: 5000, Quantity: 1, Selected: true},
	}
}

func newTestService(t *testing.T, repo *stubRepo, cart stubCart, coupons *stubCoupons, addresses stubAddresses, initiator payments.Initiator, outboxSvc *stubOutbox, remover *stubLineRemover) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, cart, remover, coupons, addresses, FlatFeeQuoter{FeeCents: 500}, initiator, outboxSvc, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestExecuteSplitsOrderPerShopAndConservesDiscount(t *testing.T) {
	shopA := uuid.New()
	shopB := uuid.New()
	repo := &stubRepo{}
	coupons := &stubCoupons{
		applied:  "SAVE10",
		coupon:   &models.Coupon{Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, DiscountValue: 10},
		discount: 800,
	}
	ob := &stubOutbox{}
	remover := &stubLineRemover{}
	svc := newTestService(t, repo, stubCart{lines: twoShopLines(shopA, shopB)}, coupons, stubAddresses{exists: true}, nil, ob, remover)

	result, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(result.SubOrders) != 2 {
		t.Fatalf("expected 2 sub-orders, got %d", len(result.SubOrders))
	}
	if result.SubtotalCents != 10000 {
		t.Fatalf("subtotal = %d, want 10000", result.SubtotalCents)
	}
	if result.DiscountCents != 800 {
		t.Fatalf("discount = %d, want 800", result.DiscountCents)
	}
	// 10000 - 800 + 2x500 shipping.
	if result.TotalCents != 10200 {
		t.Fatalf("total = %d, want 10200", result.TotalCents)
	}

	discountSum := 0
	totalSum := 0
	for _, so := range result.SubOrders {
		if so.Status != enums.SubOrderStatusProcessing {
			t.Fatalf("cod sub-order status = %s, want processing", so.Status)
		}
		if so.TotalCents != so.SubtotalCents-so.DiscountCents+so.ShippingFeeCents {
			t.Fatalf("sub-order totals inconsistent: %+v", so)
		}
		discountSum += so.DiscountCents
		totalSum += so.TotalCents
	}
	if discountSum != result.DiscountCents {
		t.Fatalf("sub-order discounts sum to %d, want %d", discountSum, result.DiscountCents)
	}
	if totalSum != result.TotalCents {
		t.Fatalf("sub-order totals sum to %d, want %d", totalSum, result.TotalCents)
	}

	if result.CouponCode == nil || *result.CouponCode != "SAVE10" {
		t.Fatalf("coupon code not recorded on order")
	}
	if !coupons.removed {
		t.Fatalf("applied coupon should be cleared after checkout")
	}
	if len(remover.deleted) != 3 {
		t.Fatalf("expected 3 cart lines cleared, got %d", len(remover.deleted))
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected one order-created event, got %+v", ob.events)
	}

	// Item-level discounts also sum to the shop share.
	for _, so := range repo.created.SubOrders {
		itemDiscount := 0
		for _, item := range so.Items {
			itemDiscount += item.DiscountCents
		}
		if itemDiscount != so.DiscountCents {
			t.Fatalf("item discounts sum to %d, want %d", itemDiscount, so.DiscountCents)
		}
	}
}

func TestExecuteCardCheckoutStaysPendingAndReturnsPaymentLink(t *testing.T) {
	shopA := uuid.New()
	repo := &stubRepo{}
	initiator := stubInitiator{link: &payments.Link{ID: "pl_1", URL: "https://square.link/abc"}}
	svc := newTestService(t, repo, stubCart{lines: twoShopLines(shopA, uuid.New())}, &stubCoupons{}, stubAddresses{exists: true}, initiator, &stubOutbox{}, &stubLineRemover{})

	result, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if result.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("payment status = %s, want pending", result.PaymentStatus)
	}
	for _, so := range result.SubOrders {
		if so.Status != enums.SubOrderStatusPending {
			t.Fatalf("card sub-order status = %s, want pending", so.Status)
		}
	}
	if result.PaymentLinkURL == nil || *result.PaymentLinkURL != "https://square.link/abc" {
		t.Fatalf("payment link missing from result")
	}
}

func TestExecuteRejectsEmptySelection(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, stubCart{}, &stubCoupons{}, stubAddresses{exists: true}, nil, &stubOutbox{}, &stubLineRemover{})

	_, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for empty selection, got %v", err)
	}
}

func TestExecuteRejectsUnknownAddress(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, stubCart{lines: twoShopLines(uuid.New(), uuid.New())}, &stubCoupons{}, stubAddresses{exists: false}, nil, &stubOutbox{}, &stubLineRemover{})

	_, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown address, got %v", err)
	}
}

func TestExecuteFailsWhenAppliedCouponNoLongerValid(t *testing.T) {
	coupons := &stubCoupons{
		applied:    "EXPIRED",
		resolveErr: pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found or expired"),
	}
	repo := &stubRepo{}
	svc := newTestService(t, repo, stubCart{lines: twoShopLines(uuid.New(), uuid.New())}, coupons, stubAddresses{exists: true}, nil, &stubOutbox{}, &stubLineRemover{})

	_, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for stale coupon, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("order should not be created when the coupon fails")
	}
}

func TestExecutePropagatesDependencyErrorFromCouponStore(t *testing.T) {
	coupons := &stubCoupons{
		applied:    "SAVE10",
		resolveErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("redis down"), "load coupon"),
	}
	svc := newTestService(t, &stubRepo{}, stubCart{lines: twoShopLines(uuid.New(), uuid.New())}, coupons, stubAddresses{exists: true}, nil, &stubOutbox{}, &stubLineRemover{})

	_, err := svc.Execute(context.Background(), Input{
		UserID:            uuid.New(),
		ShippingAddressID: uuid.New(),
		PaymentMethod:     enums.PaymentMethodCOD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error to pass through, got %v", err)
	}
}
